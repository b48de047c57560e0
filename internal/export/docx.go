// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"fmt"
	"strings"

	goword "github.com/VantageDataChat/GoWord"
	"github.com/VantageDataChat/GoWord/style"

	"deckpress/internal/models"
	"deckpress/internal/richtext"
)

// Table width in twentieths of a point (about 15.9 cm).
const docxTableWidth = 9000

// DOCXExporter writes the deck as a Word outline: a heading per slide
// followed by its text, tables and speaker notes.
type DOCXExporter struct{}

func (DOCXExporter) Format() Format    { return FormatDOCX }
func (DOCXExporter) Extension() string { return "docx" }
func (DOCXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DOCXExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	doc := job.Document
	title := doc.Meta.Title
	if title == "" {
		title = job.Filename
	}

	w := goword.New()
	w.Properties.Title = title
	w.Properties.Creator = doc.Meta.Author
	w.Properties.Description = fmt.Sprintf("%d slides", len(doc.Slides))

	sec := w.AddSection()

	lines := func(text string) {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			ps := &style.ParagraphStyle{SpaceAfter: 60}
			if strings.HasPrefix(line, "•") {
				ps.Indent = 360
			}
			sec.AddText(line, &style.FontStyle{Size: 11, Color: "334155"}, ps)
		}
	}

	table := func(rows [][]string) {
		cols := 0
		for _, r := range rows {
			cols = max(cols, len(r))
		}
		if cols == 0 {
			return
		}
		colWidth := docxTableWidth / cols

		ts := &style.TableStyle{Width: docxTableWidth, Alignment: "center"}
		ts.SetAllBorders("single", 4, "D9D9D9")
		tbl := sec.AddTable(ts)
		tbl.Grid = make([]int, cols)
		for i := range tbl.Grid {
			tbl.Grid[i] = colWidth
		}
		for i, r := range rows {
			var rs *style.RowStyle
			var cs *style.CellStyle
			fs := &style.FontStyle{Size: 10}
			if i == 0 {
				rs = &style.RowStyle{IsHeader: true}
				cs = &style.CellStyle{Shading: &style.Shading{Fill: "4472C4"}}
				fs = &style.FontStyle{Size: 10, Bold: true, Color: "FFFFFF"}
			}
			row := tbl.AddRow(0, rs)
			for j := 0; j < cols; j++ {
				cell := ""
				if j < len(r) {
					cell = richtext.PlainText(r[j])
				}
				row.AddCell(colWidth, cs).AddText(cell, fs, nil)
			}
		}
		sec.AddTextBreak(1)
	}

	sec.AddTitle(title, 1)
	if doc.Meta.Author != "" {
		sec.AddText("by "+doc.Meta.Author,
			&style.FontStyle{Size: 10, Color: "64748B"},
			&style.ParagraphStyle{Alignment: style.AlignCenter})
	}

	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sec.AddTextBreak(1)
		sec.AddTitle(fmt.Sprintf("Slide %d: %s", i+1, slideTitle(s, i)), 2)

		for _, b := range regionBlocks(s) {
			if b.Heading != "" {
				sec.AddText(b.Heading,
					&style.FontStyle{Bold: true, Size: 12, Color: "1E40AF"},
					&style.ParagraphStyle{SpaceAfter: 80})
			}
			lines(b.Text)
		}
		for _, el := range s.Elements {
			if el.Type == models.ElementTable {
				table(el.Rows)
				continue
			}
			if b, ok := elementBlock(el); ok {
				lines(b.Text)
			}
		}
		if notes := richtext.PlainText(s.Notes); notes != "" {
			sec.AddText("Notes: "+notes,
				&style.FontStyle{Size: 10, Color: "64748B", Italic: true},
				&style.ParagraphStyle{SpaceAfter: 120})
		}
	}

	data, err := w.ToBytes()
	if err != nil {
		return nil, &EncodeError{Format: FormatDOCX, Err: err}
	}
	return &Artifact{Data: data, Pages: len(doc.Slides)}, nil
}
