// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"fmt"
	"strings"

	"deckpress/internal/richtext"
)

// RTFExporter writes a Rich Text Format outline: a bold heading per slide
// followed by its plain-text regions.
type RTFExporter struct{}

func (RTFExporter) Format() Format      { return FormatRTF }
func (RTFExporter) Extension() string   { return "rtf" }
func (RTFExporter) ContentType() string { return "application/rtf" }

func (RTFExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	doc := job.Document
	var b strings.Builder
	b.WriteString(`{\rtf1\ansi\ansicpg1252\deff0{\fonttbl{\f0\fswiss Helvetica;}}` + "\n")
	b.WriteString(`{\info{\title ` + rtfEscape(doc.Meta.Title) + `}{\author ` + rtfEscape(doc.Meta.Author) + `}}` + "\n")
	b.WriteString(`\f0\fs24` + "\n")

	if doc.Meta.Title != "" {
		b.WriteString(`{\pard\qc\b\fs40 ` + rtfEscape(doc.Meta.Title) + `\par}` + "\n")
	}

	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteString(`\page` + "\n")
		}
		fmt.Fprintf(&b, "{\\pard\\sa200\\b\\fs32 %s\\par}\n", rtfEscape(slideTitle(s, i)))
		for _, blk := range slideBlocks(s) {
			if blk.Heading != "" {
				b.WriteString(`{\pard\b\fs26 ` + rtfEscape(blk.Heading) + `\par}` + "\n")
			}
			if blk.Text != "" {
				b.WriteString(`{\pard\sa120 ` + rtfEscape(blk.Text) + `\par}` + "\n")
			}
		}
		if notes := richtext.PlainText(s.Notes); notes != "" {
			b.WriteString(`{\pard\i\fs20 Notes: ` + rtfEscape(notes) + `\par}` + "\n")
		}
	}
	b.WriteString("}\n")
	return &Artifact{Data: []byte(b.String()), Pages: len(doc.Slides)}, nil
}

// rtfEscape escapes control characters and encodes non-ASCII runes as
// \uN? sequences.
func rtfEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\line `)
		case r == '\t':
			b.WriteString(`\tab `)
		case r < 0x20:
		case r < 0x80:
			b.WriteRune(r)
		case r <= 0xFFFF:
			fmt.Fprintf(&b, `\u%d?`, int16(r))
		default:
			// Outside the BMP: emit a UTF-16 surrogate pair.
			r -= 0x10000
			fmt.Fprintf(&b, `\u%d?\u%d?`, int16(0xD800+(r>>10)), int16(0xDC00+(r&0x3FF)))
		}
	}
	return b.String()
}
