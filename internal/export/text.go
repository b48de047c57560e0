// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"strconv"
	"strings"

	"deckpress/internal/richtext"
)

// TextExporter writes a plain-text outline with all markup stripped.
type TextExporter struct{}

func (TextExporter) Format() Format      { return FormatTXT }
func (TextExporter) Extension() string   { return "txt" }
func (TextExporter) ContentType() string { return "text/plain; charset=utf-8" }

func (TextExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	var b strings.Builder
	doc := job.Document

	if title := strings.TrimSpace(doc.Meta.Title); title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("=", len([]rune(title))))
		b.WriteString("\n")
		if doc.Meta.Author != "" {
			b.WriteString("by " + doc.Meta.Author + "\n")
		}
		b.WriteByte('\n')
	}

	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		heading := "Slide " + itoa(i+1) + ": " + slideTitle(s, i)
		b.WriteString(heading + "\n")
		b.WriteString(strings.Repeat("-", len([]rune(heading))) + "\n")
		for _, blk := range slideBlocks(s) {
			if blk.Heading != "" {
				b.WriteString("[" + blk.Heading + "]\n")
			}
			if blk.Text != "" {
				b.WriteString(blk.Text + "\n")
			}
		}
		if notes := richtext.PlainText(s.Notes); notes != "" {
			b.WriteString("\nNotes: " + notes + "\n")
		}
		b.WriteByte('\n')
	}

	return &Artifact{Data: []byte(strings.TrimRight(b.String(), "\n") + "\n"), Pages: len(doc.Slides)}, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
