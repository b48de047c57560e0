package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regular, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// faces hands out font faces for one render. Faces keep glyph caches and
// are not shared between goroutines.
type faces struct {
	cache map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

func newFaces() *faces {
	return &faces{cache: make(map[faceKey]font.Face)}
}

func (f *faces) get(size float64, isBold bool) (font.Face, error) {
	if size < 4 {
		size = 4
	}
	k := faceKey{size: size, bold: isBold}
	if face, ok := f.cache[k]; ok {
		return face, nil
	}
	src := regular
	if isBold {
		src = bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %.1fpt: %w", size, err)
	}
	f.cache[k] = face
	return face, nil
}

func (f *faces) close() {
	for _, face := range f.cache {
		_ = face.Close()
	}
}

// wrap breaks text into lines no wider than width pixels. Existing line
// breaks are kept.
func wrap(face font.Face, text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if font.MeasureString(face, candidate).Ceil() > width {
				out = append(out, line)
				line = w
				continue
			}
			line = candidate
		}
		out = append(out, line)
	}
	return out
}

// drawText paints wrapped text into r, clipping lines that do not fit.
func drawText(dst *image.RGBA, r image.Rectangle, text string, face font.Face, col color.Color, center bool) {
	if strings.TrimSpace(text) == "" || r.Dx() <= 0 {
		return
	}
	m := face.Metrics()
	lineHeight := (m.Height * 6 / 5).Ceil()
	if lineHeight <= 0 {
		lineHeight = m.Ascent.Ceil() + m.Descent.Ceil()
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	y := r.Min.Y + m.Ascent.Ceil()
	for _, line := range wrap(face, text, r.Dx()) {
		if y+m.Descent.Ceil() > r.Max.Y {
			break
		}
		x := r.Min.X
		if center {
			x += (r.Dx() - d.MeasureString(line).Ceil()) / 2
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += lineHeight
	}
}
