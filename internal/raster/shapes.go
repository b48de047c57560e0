package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

type point struct{ x, y float64 }

// polygon fills the closed path pts on dst.
func polygon(dst *image.RGBA, pts []point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.x), float32(p.y))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(col), image.Point{})
}

// outline strokes the closed path pts with a band of the given width.
func outline(dst *image.RGBA, pts []point, width float64, col color.Color, closed bool) {
	n := len(pts)
	if n < 2 || width <= 0 {
		return
	}
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		segment(dst, pts[i], pts[(i+1)%n], width, col)
	}
}

func segment(dst *image.RGBA, a, b point, width float64, col color.Color) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	polygon(dst, []point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	}, col)
}

func rectPoints(x, y, w, h float64) []point {
	return []point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

func ellipsePoints(x, y, w, h float64) []point {
	const steps = 64
	cx, cy := x+w/2, y+h/2
	pts := make([]point, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / steps
		pts[i] = point{cx + w/2*math.Cos(a), cy + h/2*math.Sin(a)}
	}
	return pts
}

func trianglePoints(x, y, w, h float64) []point {
	return []point{{x + w/2, y}, {x + w, y + h}, {x, y + h}}
}

// arrowPoints builds a right-pointing block arrow filling the box.
func arrowPoints(x, y, w, h float64) []point {
	head := math.Min(w*0.35, h)
	shaft := h * 0.3
	mid := y + h/2
	return []point{
		{x, mid - shaft},
		{x + w - head, mid - shaft},
		{x + w - head, y},
		{x + w, mid},
		{x + w - head, y + h},
		{x + w - head, mid + shaft},
		{x, mid + shaft},
	}
}

func wedgePoints(cx, cy, r, from, to float64) []point {
	pts := []point{{cx, cy}}
	steps := int(math.Max(2, (to-from)/(math.Pi/32)))
	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		pts = append(pts, point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// rotate turns pts by deg degrees around the centre of the box.
func rotate(pts []point, x, y, w, h, deg float64) []point {
	if deg == 0 {
		return pts
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := x+w/2, y+h/2
	out := make([]point, len(pts))
	for i, p := range pts {
		dx, dy := p.x-cx, p.y-cy
		out[i] = point{cx + dx*cos - dy*sin, cy + dx*sin + dy*cos}
	}
	return out
}
