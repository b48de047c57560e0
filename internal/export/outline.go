// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"strings"

	"deckpress/internal/models"
	"deckpress/internal/richtext"
	"deckpress/internal/slides"
)

// block is one plain-text section of a slide for the outline-style
// formats (txt, rtf, docx, odp).
type block struct {
	Heading string // optional sub-heading, e.g. a comparison column title
	Text    string
}

// slideTitle returns the plain title of s, or "Slide n" when empty.
func slideTitle(s models.Slide, index int) string {
	if t := strings.TrimSpace(richtext.PlainText(s.Title)); t != "" {
		return t
	}
	return "Slide " + itoa(index+1)
}

// slideBlocks flattens the body regions and text-bearing elements of s.
func slideBlocks(s models.Slide) []block {
	out := regionBlocks(s)
	for _, el := range s.Elements {
		if b, ok := elementBlock(el); ok {
			out = append(out, b)
		}
	}
	return out
}

// regionBlocks returns the non-title layout regions of s as plain text. A
// comparison column title becomes the heading of its column's content.
func regionBlocks(s models.Slide) []block {
	var out []block
	regions := slides.Regions(s)
	for i := 0; i < len(regions); i++ {
		r := regions[i]
		switch r.Name {
		case slides.RegionTitle:
			continue
		case slides.RegionCompLeftTitle, slides.RegionCompRightTitle:
			b := block{Heading: richtext.PlainText(r.Text)}
			if i+1 < len(regions) {
				b.Text = richtext.PlainText(regions[i+1].Text)
				i++
			}
			if b.Heading != "" || b.Text != "" {
				out = append(out, b)
			}
			continue
		}
		if t := richtext.PlainText(r.Text); t != "" {
			out = append(out, block{Text: t})
		}
	}
	return out
}

func elementBlock(el models.Element) (block, bool) {
	var t string
	switch el.Type {
	case models.ElementText, models.ElementShape:
		t = richtext.PlainText(el.Text)
	case models.ElementTable:
		t = tableText(el.Rows)
	case models.ElementChart:
		t = chartText(el.Chart)
	}
	return block{Text: t}, t != ""
}

func tableText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = richtext.PlainText(c)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func chartText(c *models.Chart) string {
	if c == nil || len(c.Values) == 0 {
		return ""
	}
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		label := "#" + itoa(i+1)
		if i < len(c.Labels) && c.Labels[i] != "" {
			label = c.Labels[i]
		}
		parts[i] = label + ": " + ftoa(v)
	}
	return "Chart (" + c.Kind + "): " + strings.Join(parts, ", ")
}
