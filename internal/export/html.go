// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"

	"deckpress/internal/markdown"
	"deckpress/internal/models"
	"deckpress/internal/richtext"
	"deckpress/internal/slides"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var deckTemplate = template.Must(template.ParseFS(templateFS, "templates/deck.html.tmpl"))

// safeCSSValue admits colour and gradient descriptors only.
var safeCSSValue = regexp.MustCompile(`^[#(),.%\w\s-]+$`)

// HTMLExporter writes a self-contained HTML deck. Slide markup is
// sanitized and notes are rendered from Markdown.
type HTMLExporter struct {
	Logger *slog.Logger
}

func (HTMLExporter) Format() Format      { return FormatHTML }
func (HTMLExporter) Extension() string   { return "html" }
func (HTMLExporter) ContentType() string { return "text/html; charset=utf-8" }

type htmlDeck struct {
	Title  string
	Author string
	Slides []htmlSlide
}

type htmlSlide struct {
	Number    int
	ID        int64
	Layout    models.Layout
	Style     template.CSS
	Image     *htmlImage
	Regions   []htmlRegion
	Elements  []htmlElement
	Header    string
	Footer    string
	PageLabel string
	Notes     template.HTML
}

type htmlImage struct {
	Src   template.URL
	Style template.CSS
}

type htmlRegion struct {
	Name   string
	Center bool
	Style  template.CSS
	HTML   template.HTML
}

type htmlElement struct {
	ID    string
	Type  models.ElementType
	Style template.CSS
	Src   template.URL
	Rows  [][]string
	HTML  template.HTML
}

func (e HTMLExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	doc := job.Document
	deck := htmlDeck{Title: doc.Meta.Title, Author: doc.Meta.Author}
	if deck.Title == "" {
		deck.Title = job.Filename
	}

	total := len(doc.Slides)
	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deck.Slides = append(deck.Slides, e.slide(s, i, total, doc.Meta))
	}

	var buf bytes.Buffer
	if err := deckTemplate.Execute(&buf, deck); err != nil {
		return nil, &EncodeError{Format: FormatHTML, Err: err}
	}
	return &Artifact{Data: buf.Bytes(), Pages: total}, nil
}

func (e HTMLExporter) slide(s models.Slide, index, total int, meta models.Meta) htmlSlide {
	out := htmlSlide{
		Number: index + 1,
		ID:     s.ID,
		Layout: s.Layout,
		Style:  template.CSS(cssProp("background", s.Background, "#ffffff") + cssProp("color", s.TextColor, "#000000")),
	}
	anims := animationsByTarget(s.Animations)

	if box, ok := slides.ImageBox(s); ok {
		if src, ok := safeURL(s.ImageURL); ok {
			out.Image = &htmlImage{Src: src, Style: template.CSS(boxStyle(box))}
		}
	}
	for _, r := range slides.Regions(s) {
		style := boxStyle(r.Box) + fmt.Sprintf("font-size:%.0fpx;", r.FontSize) + animationCSS(anims[r.Name])
		out.Regions = append(out.Regions, htmlRegion{
			Name:   r.Name,
			Center: r.Align == slides.AlignCenter,
			Style:  template.CSS(style),
			HTML:   template.HTML(richtext.Sanitize(r.Text)),
		})
	}
	for _, el := range s.Elements {
		out.Elements = append(out.Elements, elementHTML(el, anims[el.ID]))
	}

	if meta.Header.Enabled {
		out.Header = meta.Header.Text
	}
	if meta.Footer.Enabled {
		out.Footer = meta.Footer.Text
		if meta.Footer.ShowSlideNumber {
			out.PageLabel = fmt.Sprintf("%d / %d", index+1, total)
		}
	}

	if strings.TrimSpace(s.Notes) != "" {
		notes, err := markdown.ToHTML(s.Notes)
		if err != nil {
			e.logger().Warn("html export: notes not rendered", "slide", index+1, "error", err)
		} else {
			out.Notes = template.HTML(notes)
		}
	}
	return out
}

func (e HTMLExporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func elementHTML(el models.Element, anim *models.Animation) htmlElement {
	style := boxStyle(slides.Box{X: el.X, Y: el.Y, W: el.Width, H: el.Height})
	if el.Rotation != 0 {
		style += fmt.Sprintf("transform:rotate(%.1fdeg);", el.Rotation)
	}
	out := htmlElement{ID: el.ID, Type: el.Type}

	switch el.Type {
	case models.ElementShape:
		style += cssProp("background", el.Fill, "")
		if el.Stroke != "" && el.StrokeWidth > 0 {
			style += fmt.Sprintf("border:%.0fpx solid ", el.StrokeWidth) + cssValue(el.Stroke, "#000000") + ";"
		}
		switch el.Shape {
		case models.ShapeEllipse:
			style += "border-radius:50%;"
		case models.ShapeTriangle:
			style += "clip-path:polygon(50% 0,100% 100%,0 100%);"
		case models.ShapeArrow:
			style += "clip-path:polygon(0 35%,65% 35%,65% 0,100% 50%,65% 100%,65% 65%,0 65%);"
		case models.ShapeLine:
			style += "height:0;border-top:2px solid " + cssValue(el.Stroke, cssValue(el.Fill, "#000000")) + ";background:none;"
		}
		out.HTML = template.HTML(richtext.Sanitize(el.Text))
	case models.ElementImage:
		if src, ok := safeURL(el.Src); ok {
			out.Src = src
		}
	case models.ElementTable:
		for _, row := range el.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = richtext.PlainText(c)
			}
			out.Rows = append(out.Rows, cells)
		}
	case models.ElementChart:
		out.HTML = template.HTML(template.HTMLEscapeString(chartText(el.Chart)))
	default:
		style += cssProp("color", el.Fill, "")
		out.HTML = template.HTML(richtext.Sanitize(el.Text))
	}
	out.Style = template.CSS(style + animationCSS(anim))
	return out
}

func boxStyle(b slides.Box) string {
	return fmt.Sprintf("left:%.2fpx;top:%.2fpx;width:%.2fpx;height:%.2fpx;", b.X, b.Y, b.W, b.H)
}

func cssValue(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" || !safeCSSValue.MatchString(v) {
		return def
	}
	return v
}

func cssProp(name, v, def string) string {
	if val := cssValue(v, def); val != "" {
		return name + ":" + val + ";"
	}
	return ""
}

func safeURL(src string) (template.URL, bool) {
	lower := strings.ToLower(strings.TrimSpace(src))
	if strings.HasPrefix(lower, "data:image/") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return template.URL(src), true
	}
	return "", false
}

func animationsByTarget(anims []models.Animation) map[string]*models.Animation {
	out := make(map[string]*models.Animation, len(anims))
	for i := range anims {
		out[anims[i].Target] = &anims[i]
	}
	return out
}

var cssAnimationName = regexp.MustCompile(`^[A-Za-z]+$`)

func animationCSS(a *models.Animation) string {
	if a == nil || !cssAnimationName.MatchString(a.Type) {
		return ""
	}
	dur := a.Duration
	if dur <= 0 {
		dur = 500
	}
	return fmt.Sprintf("animation:%s %dms ease %dms both;", a.Type, dur, max(a.Delay, 0))
}
