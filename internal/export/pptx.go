// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"deckpress/internal/models"
	"deckpress/internal/raster"
	"deckpress/internal/richtext"
	"deckpress/internal/slides"
)

// Slide geometry. The 960x540 canvas maps onto a 10 x 5.625 inch slide,
// so one canvas pixel is 9525 EMU.
const (
	emuPerInch = 914400
	emuPerPx   = 10 * emuPerInch / slides.CanvasWidth

	pptxSlideWidth  = int64(10 * emuPerInch)
	pptxSlideHeight = int64(5.625 * emuPerInch)

	// elementScale is the bitmap resolution of elements embedded as
	// pictures, in pixels per canvas pixel.
	elementScale = 2
)

// PPTXExporter writes a PowerPoint deck with one slide per editor slide.
// Layout regions become text boxes, elements become text boxes or
// pictures, and animations are written as entrance or emphasis effects.
type PPTXExporter struct {
	Logger *slog.Logger
}

func (PPTXExporter) Format() Format    { return FormatPPTX }
func (PPTXExporter) Extension() string { return "pptx" }
func (PPTXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

func (e PPTXExporter) Export(ctx context.Context, job Job) (*Artifact, error) {
	doc := job.Document
	logger := loggerOr(e.Logger)

	p := ppt.New()
	p.GetDocumentProperties().Title = doc.Meta.Title
	p.GetDocumentProperties().Creator = doc.Meta.Author

	decks := make([]slideShapes, len(doc.Slides))
	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide := p.GetActiveSlide()
		if i > 0 {
			slide = p.CreateSlide()
		}
		b := &pptxSlide{slide: slide, logger: logger}
		b.build(s, doc.Meta, i+1, len(doc.Slides))
		decks[i] = slideShapes{targets: b.targets, animations: s.Animations}
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, &EncodeError{Format: FormatPPTX, Err: fmt.Errorf("create writer: %w", err)}
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, &EncodeError{Format: FormatPPTX, Err: fmt.Errorf("write: %w", err)}
	}

	data := buf.Bytes()
	if hasAnimations(doc.Slides) {
		out, skipped, err := injectTiming(data, decks)
		if err != nil {
			return nil, &EncodeError{Format: FormatPPTX, Err: fmt.Errorf("animations: %w", err)}
		}
		for _, i := range skipped {
			logger.Warn("pptx export: animations dropped, shapes could not be matched", "slide", i+1)
		}
		data = out
	}
	return &Artifact{Data: data, Pages: len(doc.Slides)}, nil
}

func hasAnimations(ss []models.Slide) bool {
	for _, s := range ss {
		if len(s.Animations) > 0 {
			return true
		}
	}
	return false
}

// pptxSlide fills one GoPPT slide and records the animation target of
// every shape it creates.
type pptxSlide struct {
	slide   *ppt.Slide
	logger  *slog.Logger
	targets []string
	fg      string
}

func (b *pptxSlide) build(s models.Slide, meta models.Meta, number, total int) {
	b.fg = argb(s.TextColor, "FF000000")

	bg := b.slide.CreateRichTextShape()
	bg.SetOffsetX(0).SetOffsetY(0)
	bg.SetWidth(pptxSlideWidth).SetHeight(pptxSlideHeight)
	bg.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(argb(s.Background, "FFFFFFFF"))))
	b.targets = append(b.targets, "")

	if box, ok := slides.ImageBox(s); ok {
		if mime, data, err := raster.DecodeDataURL(s.ImageURL); err == nil && strings.HasPrefix(mime, "image/") {
			b.picture(box, data, mime, slides.RegionImage)
		} else {
			b.logger.Warn("pptx export: layout image skipped", "slide", number, "error", err)
		}
	}
	for _, r := range slides.Regions(s) {
		text := richtext.PlainText(r.Text)
		if text == "" {
			continue
		}
		b.text(r.Box, text, r.FontSize, r.Bold, r.Align == slides.AlignCenter, b.fg, "", r.Name)
	}
	for _, el := range s.Elements {
		b.element(el, number)
	}
	b.bands(meta, number, total)
}

func (b *pptxSlide) text(box slides.Box, text string, sizePx float64, bold, center bool, color, fill, target string) {
	shape := b.slide.CreateRichTextShape()
	place(shape, box)
	if fill != "" {
		shape.SetFill(ppt.NewFill().SetSolid(ppt.NewColor(fill)))
	}
	size := points(sizePx)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			shape.CreateParagraph()
		}
		run := shape.CreateTextRun(line)
		run.GetFont().SetSize(size).SetBold(bold).SetColor(ppt.NewColor(color))
		if center {
			shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
		}
	}
	b.targets = append(b.targets, target)
}

func (b *pptxSlide) picture(box slides.Box, data []byte, mime, target string) {
	shape := b.slide.CreateDrawingShape()
	shape.SetImageData(data, mime)
	shape.SetOffsetX(emu(box.X)).SetOffsetY(emu(box.Y))
	shape.SetWidth(emu(box.W)).SetHeight(emu(box.H))
	b.targets = append(b.targets, target)
}

func (b *pptxSlide) element(el models.Element, number int) {
	box := slides.Box{X: el.X, Y: el.Y, W: el.Width, H: el.Height}
	switch el.Type {
	case models.ElementText:
		b.text(box, richtext.PlainText(el.Text), 18, false, false, argb(el.Fill, b.fg), "", el.ID)
	case models.ElementImage:
		mime, data, err := raster.DecodeDataURL(el.Src)
		if err != nil || !strings.HasPrefix(mime, "image/") {
			b.logger.Warn("pptx export: image element skipped", "slide", number, "element", el.ID, "error", err)
			return
		}
		b.picture(box, data, mime, el.ID)
	case models.ElementTable:
		b.text(box, pptxTable(el.Rows), 14, false, false, b.fg, "FFF8FAFC", el.ID)
	case models.ElementShape:
		if (el.Shape == "" || el.Shape == models.ShapeRectangle) && el.Rotation == 0 {
			fill := ""
			if _, ok := raster.ParseColor(el.Fill); ok {
				fill = argb(el.Fill, "")
			}
			b.text(box, richtext.PlainText(el.Text), 16, false, true, b.fg, fill, el.ID)
			return
		}
		b.bitmap(el, box, number)
	case models.ElementChart:
		b.bitmap(el, box, number)
	}
}

// bitmap embeds an element GoPPT has no native shape for as a picture.
func (b *pptxSlide) bitmap(el models.Element, box slides.Box, number int) {
	img, err := raster.Element(el, elementScale)
	if err != nil {
		b.logger.Warn("pptx export: element skipped", "slide", number, "element", el.ID, "error", err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		b.logger.Warn("pptx export: element skipped", "slide", number, "element", el.ID, "error", err)
		return
	}
	b.picture(box, buf.Bytes(), "image/png", el.ID)
}

func (b *pptxSlide) bands(meta models.Meta, number, total int) {
	if meta.Header.Enabled && meta.Header.Text != "" {
		b.text(slides.Box{X: 20, Y: 8, W: 920, H: 24}, meta.Header.Text, 12, false, true, b.fg, "", "")
	}
	if !meta.Footer.Enabled {
		return
	}
	if meta.Footer.Text != "" {
		b.text(slides.Box{X: 20, Y: 508, W: 600, H: 24}, meta.Footer.Text, 12, false, false, b.fg, "", "")
	}
	if meta.Footer.ShowSlideNumber {
		shape := b.slide.CreateRichTextShape()
		place(shape, slides.Box{X: 740, Y: 508, W: 200, H: 24})
		shape.CreateTextRun(fmt.Sprintf("%d / %d", number, total)).GetFont().SetSize(points(12)).SetColor(ppt.NewColor(b.fg))
		shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
		b.targets = append(b.targets, "")
	}
}

func pptxTable(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = richtext.PlainText(c)
		}
		lines = append(lines, strings.Join(cells, "  │  "))
	}
	return strings.Join(lines, "\n")
}

func place(shape *ppt.RichTextShape, box slides.Box) {
	shape.SetOffsetX(emu(box.X)).SetOffsetY(emu(box.Y))
	shape.SetWidth(emu(box.W)).SetHeight(emu(box.H))
}

func emu(px float64) int64 { return int64(math.Round(px * emuPerPx)) }

// points converts a canvas font size (96 dpi) to points.
func points(px float64) int { return max(1, int(math.Round(px*0.75))) }

// argb converts a CSS colour to GoPPT's "AARRGGBB" form.
func argb(css, def string) string {
	c, ok := raster.ParseColor(css)
	if !ok {
		return def
	}
	return fmt.Sprintf("%02X", c.A) + raster.Hex(c)
}
