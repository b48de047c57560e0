// Package raster paints slides into bitmaps for the PDF and image
// exporters.
package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strconv"
	"strings"

	"deckpress/internal/models"
	"deckpress/internal/richtext"
	"deckpress/internal/slides"
)

// Default output size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	grid  = color.RGBA{200, 200, 200, 255}
)

// chartPalette colours successive chart series values.
var chartPalette = []color.RGBA{
	{79, 129, 189, 255},
	{192, 80, 77, 255},
	{155, 187, 89, 255},
	{128, 100, 162, 255},
	{75, 172, 198, 255},
	{247, 150, 70, 255},
}

// Frame carries the document context a slide is painted in.
type Frame struct {
	Meta   models.Meta
	Number int // 1-based
	Total  int
}

// SlideRenderer paints one slide. Exporters depend on this interface so
// tests can substitute failing renderers.
type SlideRenderer interface {
	Render(ctx context.Context, s models.Slide, f Frame) (image.Image, error)
}

// Renderer paints slides with the Go fonts.
type Renderer struct {
	width, height int
}

// New creates a renderer for the given output size. Zero values select
// 1280x720.
func New(width, height int) (*Renderer, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	return &Renderer{width: width, height: height}, nil
}

// Size returns the output dimensions in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render paints s. Panics raised while painting are returned as errors.
func (r *Renderer) Render(ctx context.Context, s models.Slide, f Frame) (img image.Image, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("render slide %d: panic: %v", s.ID, rec)
		}
	}()

	p := &painter{
		dst:   image.NewRGBA(image.Rect(0, 0, r.width, r.height)),
		sx:    float64(r.width) / slides.CanvasWidth,
		sy:    float64(r.height) / slides.CanvasHeight,
		faces: newFaces(),
	}
	defer p.faces.close()

	bg := ColorOr(s.Background, white)
	fg := ColorOr(s.TextColor, black)
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if box, ok := slides.ImageBox(s); ok {
		p.image(s.ImageURL, box)
	}
	for _, reg := range slides.Regions(s) {
		if err := p.text(richtext.PlainText(reg.Text), reg.Box, reg.FontSize, reg.Bold, reg.Align == slides.AlignCenter, fg); err != nil {
			return nil, err
		}
	}
	for _, el := range s.Elements {
		if err := p.element(el, fg); err != nil {
			return nil, err
		}
	}
	if err := p.bands(f, fg); err != nil {
		return nil, err
	}
	return p.dst, nil
}

// Placeholder paints the reduced fallback for a slide that failed to
// render: background, title and raw content text only.
func (r *Renderer) Placeholder(s models.Slide) (image.Image, error) {
	p := &painter{
		dst:   image.NewRGBA(image.Rect(0, 0, r.width, r.height)),
		sx:    float64(r.width) / slides.CanvasWidth,
		sy:    float64(r.height) / slides.CanvasHeight,
		faces: newFaces(),
	}
	defer p.faces.close()

	bg := ColorOr(s.Background, white)
	fg := ColorOr(s.TextColor, black)
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if err := p.text(richtext.PlainText(s.Title), slides.Box{X: 60, Y: 40, W: 840, H: 90}, 36, true, false, fg); err != nil {
		return nil, err
	}
	if err := p.text(PlainBody(s), slides.Box{X: 60, Y: 150, W: 840, H: 340}, 20, false, false, fg); err != nil {
		return nil, err
	}
	return p.dst, nil
}

// PlainBody joins every content field of s as plain text.
func PlainBody(s models.Slide) string {
	var parts []string
	for _, v := range []string{
		s.Content, s.ContentLeft, s.ContentRight,
		s.CompLeftTitle, s.CompLeftContent, s.CompRightTitle, s.CompRightContent,
	} {
		if t := richtext.PlainText(v); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

type painter struct {
	dst    *image.RGBA
	sx, sy float64
	faces  *faces
}

func (p *painter) rect(b slides.Box) image.Rectangle {
	return image.Rect(
		int(b.X*p.sx), int(b.Y*p.sy),
		int((b.X+b.W)*p.sx), int((b.Y+b.H)*p.sy),
	)
}

func (p *painter) text(s string, b slides.Box, size float64, isBold, center bool, col color.Color) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	face, err := p.faces.get(size*p.sy, isBold)
	if err != nil {
		return err
	}
	drawText(p.dst, p.rect(b), s, face, col, center)
	return nil
}

func (p *painter) image(src string, b slides.Box) {
	img, err := DecodeImage(src)
	if err != nil {
		slog.Warn("raster: skipping image", "error", err)
		return
	}
	fit(p.dst, p.rect(b), img)
}

func (p *painter) element(el models.Element, fg color.RGBA) error {
	x, y := el.X*p.sx, el.Y*p.sy
	w, h := el.Width*p.sx, el.Height*p.sy
	box := slides.Box{X: el.X, Y: el.Y, W: el.Width, H: el.Height}

	switch el.Type {
	case models.ElementShape:
		p.shape(el, x, y, w, h)
		if el.Text != "" {
			return p.text(richtext.PlainText(el.Text), box, 16, false, true, fg)
		}
	case models.ElementImage:
		p.image(el.Src, box)
	case models.ElementText:
		return p.text(richtext.PlainText(el.Text), box, 18, false, false, ColorOr(el.Fill, fg))
	case models.ElementTable:
		return p.table(el, fg)
	case models.ElementChart:
		p.chart(el, x, y, w, h)
	default:
		slog.Warn("raster: unknown element type", "type", el.Type, "id", el.ID)
	}
	return nil
}

func (p *painter) shape(el models.Element, x, y, w, h float64) {
	var pts []point
	closed := true
	switch el.Shape {
	case models.ShapeEllipse:
		pts = ellipsePoints(x, y, w, h)
	case models.ShapeTriangle:
		pts = trianglePoints(x, y, w, h)
	case models.ShapeArrow:
		pts = arrowPoints(x, y, w, h)
	case models.ShapeLine:
		pts = []point{{x, y + h/2}, {x + w, y + h/2}}
		closed = false
	default:
		pts = rectPoints(x, y, w, h)
	}
	pts = rotate(pts, x, y, w, h, el.Rotation)

	if closed {
		if fill, ok := ParseColor(el.Fill); ok && fill.A > 0 {
			polygon(p.dst, pts, fill)
		}
	}
	stroke, ok := ParseColor(el.Stroke)
	width := el.StrokeWidth * p.sx
	if !closed && !ok {
		stroke, ok = ColorOr(el.Fill, black), true
	}
	if !closed && width == 0 {
		width = 2 * p.sx
	}
	if ok && width > 0 {
		outline(p.dst, pts, width, stroke, closed)
	}
}

func (p *painter) table(el models.Element, fg color.RGBA) error {
	rows := len(el.Rows)
	if rows == 0 {
		return nil
	}
	cols := 0
	for _, r := range el.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return nil
	}
	cw, rh := el.Width/float64(cols), el.Height/float64(rows)
	fontSize := min(16, rh*0.5)
	for i, row := range el.Rows {
		for j := 0; j < cols; j++ {
			cell := slides.Box{X: el.X + float64(j)*cw, Y: el.Y + float64(i)*rh, W: cw, H: rh}
			r := p.rect(cell)
			outline(p.dst, rectPoints(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())), 1, grid, true)
			if j >= len(row) {
				continue
			}
			inner := slides.Box{X: cell.X + 4, Y: cell.Y + 2, W: cell.W - 8, H: cell.H - 4}
			if err := p.text(richtext.PlainText(row[j]), inner, fontSize, i == 0, false, fg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *painter) chart(el models.Element, x, y, w, h float64) {
	c := el.Chart
	if c == nil || len(c.Values) == 0 {
		return
	}
	peak := 0.0
	total := 0.0
	for _, v := range c.Values {
		peak = max(peak, v)
		if v > 0 {
			total += v
		}
	}
	if peak <= 0 {
		return
	}

	switch c.Kind {
	case "pie":
		if total <= 0 {
			return
		}
		r := min(w, h) / 2
		cx, cy := x+w/2, y+h/2
		angle := -1.5707963267948966
		for i, v := range c.Values {
			if v <= 0 {
				continue
			}
			sweep := v / total * 2 * 3.141592653589793
			polygon(p.dst, wedgePoints(cx, cy, r, angle, angle+sweep), chartPalette[i%len(chartPalette)])
			angle += sweep
		}
	case "line":
		step := w / float64(max(1, len(c.Values)-1))
		pts := make([]point, len(c.Values))
		for i, v := range c.Values {
			pts[i] = point{x + float64(i)*step, y + h - max(v, 0)/peak*h}
		}
		outline(p.dst, pts, 3*p.sx, chartPalette[0], false)
	default:
		n := float64(len(c.Values))
		slot := w / n
		for i, v := range c.Values {
			bh := max(v, 0) / peak * h
			polygon(p.dst, rectPoints(x+float64(i)*slot+slot*0.1, y+h-bh, slot*0.8, bh), chartPalette[i%len(chartPalette)])
		}
	}
	outline(p.dst, []point{{x, y}, {x, y + h}, {x + w, y + h}}, 1, grid, false)
}

// bands paints the document header and footer.
func (p *painter) bands(f Frame, fg color.RGBA) error {
	if f.Meta.Header.Enabled && f.Meta.Header.Text != "" {
		if err := p.text(f.Meta.Header.Text, slides.Box{X: 20, Y: 8, W: 920, H: 24}, 12, false, true, fg); err != nil {
			return err
		}
	}
	if !f.Meta.Footer.Enabled {
		return nil
	}
	if f.Meta.Footer.Text != "" {
		if err := p.text(f.Meta.Footer.Text, slides.Box{X: 20, Y: 510, W: 700, H: 24}, 12, false, false, fg); err != nil {
			return err
		}
	}
	if f.Meta.Footer.ShowSlideNumber && f.Number > 0 {
		label := strconv.Itoa(f.Number)
		if f.Total > 0 {
			label += " / " + strconv.Itoa(f.Total)
		}
		return p.text(label, slides.Box{X: 820, Y: 510, W: 120, H: 24}, 12, false, true, fg)
	}
	return nil
}

// Element paints a single element onto a transparent bitmap sized to the
// element's box at the given pixels-per-canvas-unit scale.
func Element(el models.Element, scale float64) (img image.Image, err error) {
	if scale <= 0 {
		scale = 1
	}
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("render element %s: panic: %v", el.ID, rec)
		}
	}()
	if err := loadFonts(); err != nil {
		return nil, err
	}
	w, h := int(el.Width*scale), int(el.Height*scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render element %s: empty box", el.ID)
	}
	p := &painter{
		dst:   image.NewRGBA(image.Rect(0, 0, w, h)),
		sx:    scale,
		sy:    scale,
		faces: newFaces(),
	}
	defer p.faces.close()

	local := el
	local.X, local.Y = 0, 0
	if err := p.element(local, black); err != nil {
		return nil, err
	}
	return p.dst, nil
}
