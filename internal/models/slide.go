// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Layout selects which content fields of a slide are meaningful.
type Layout string

const (
	LayoutBlank        Layout = "blank"
	LayoutTitleContent Layout = "title-content"
	LayoutTitleOnly    Layout = "title-only"
	LayoutContentOnly  Layout = "content-only"
	LayoutTwoColumn    Layout = "two-column"
	LayoutImageText    Layout = "image-text"
	LayoutComparison   Layout = "comparison"
)

// Layouts lists every supported layout in display order.
var Layouts = []Layout{
	LayoutBlank, LayoutTitleContent, LayoutTitleOnly, LayoutContentOnly,
	LayoutTwoColumn, LayoutImageText, LayoutComparison,
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	for _, known := range Layouts {
		if l == known {
			return true
		}
	}
	return false
}

// ElementType distinguishes the positioned objects a slide can carry.
type ElementType string

const (
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
	ElementTable ElementType = "table"
	ElementChart ElementType = "chart"
	ElementText  ElementType = "text"
)

// Shape kinds for ElementShape.
const (
	ShapeRectangle = "rectangle"
	ShapeEllipse   = "ellipse"
	ShapeTriangle  = "triangle"
	ShapeLine      = "line"
	ShapeArrow     = "arrow"
)

// Chart is the payload of an ElementChart.
type Chart struct {
	Kind   string    `json:"kind"` // "bar", "line", "pie"
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Element is a positioned sub-object on a slide. Coordinates are in
// canvas pixels of a 960x540 reference slide.
type Element struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Rotation    float64     `json:"rotation,omitempty"`
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Text        string      `json:"text,omitempty"`
	Src         string      `json:"src,omitempty"`
	Shape       string      `json:"shape,omitempty"`
	Rows        [][]string  `json:"rows,omitempty"`
	Chart       *Chart      `json:"chart,omitempty"`
}

// Animation is a timed effect bound to a slide region ("title",
// "content", ...) or an element id.
type Animation struct {
	ID       string `json:"id"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Duration int    `json:"duration"` // milliseconds
	Delay    int    `json:"delay"`    // milliseconds
	Order    int    `json:"order"`
}

// Slide is one page of a presentation. Layout-specific fields are left
// empty when the layout does not use them.
type Slide struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Background string `json:"background"`
	TextColor  string `json:"textColor"`
	Layout     Layout `json:"layout"`

	ContentLeft  string `json:"contentLeft,omitempty"`
	ContentRight string `json:"contentRight,omitempty"`

	CompLeftTitle    string `json:"compLeftTitle,omitempty"`
	CompLeftContent  string `json:"compLeftContent,omitempty"`
	CompRightTitle   string `json:"compRightTitle,omitempty"`
	CompRightContent string `json:"compRightContent,omitempty"`

	ImageURL string `json:"imageUrl,omitempty"`

	Elements   []Element   `json:"elements,omitempty"`
	Animations []Animation `json:"animations,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// Clone returns a structural deep copy of the slide. Empty element and
// animation lists come back nil, the form they take after a JSON round trip.
func (s Slide) Clone() Slide {
	out := s
	out.Elements, out.Animations = nil, nil
	if len(s.Elements) > 0 {
		out.Elements = make([]Element, len(s.Elements))
		for i, e := range s.Elements {
			out.Elements[i] = e.Clone()
		}
	}
	if len(s.Animations) > 0 {
		out.Animations = make([]Animation, len(s.Animations))
		copy(out.Animations, s.Animations)
	}
	return out
}

// Clone returns a deep copy of the element, including table rows and
// chart series.
func (e Element) Clone() Element {
	out := e
	if e.Rows != nil {
		out.Rows = make([][]string, len(e.Rows))
		for i, row := range e.Rows {
			if row != nil {
				out.Rows[i] = append([]string(nil), row...)
			}
		}
	}
	if e.Chart != nil {
		c := *e.Chart
		if e.Chart.Labels != nil {
			c.Labels = append([]string(nil), e.Chart.Labels...)
		}
		if e.Chart.Values != nil {
			c.Values = append([]float64(nil), e.Chart.Values...)
		}
		out.Chart = &c
	}
	return out
}

// CloneSlides deep-copies a slide sequence. A nil input yields nil.
func CloneSlides(slides []Slide) []Slide {
	if slides == nil {
		return nil
	}
	out := make([]Slide, len(slides))
	for i, s := range slides {
		out[i] = s.Clone()
	}
	return out
}

// HeaderFooter describes a document-wide header or footer band.
type HeaderFooter struct {
	Enabled         bool   `json:"enabled"`
	Text            string `json:"text,omitempty"`
	ShowSlideNumber bool   `json:"showSlideNumber,omitempty"`
}

// Meta holds document-level attributes that live independently of slides.
type Meta struct {
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	SlideSize   string       `json:"slideSize,omitempty"` // "16:9" or "4:3"
	ThemePreset string       `json:"themePreset,omitempty"`
	Header      HeaderFooter `json:"header"`
	Footer      HeaderFooter `json:"footer"`
}

// Document is the lossless native representation of a presentation.
type Document struct {
	Slides []Slide `json:"slides"`
	Meta   Meta    `json:"meta"`
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	return Document{Slides: CloneSlides(d.Slides), Meta: d.Meta}
}
