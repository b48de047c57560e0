// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slides

import "deckpress/internal/models"

// Reference canvas size. Element coordinates and region boxes are in
// these units; renderers scale them to their own output size.
const (
	CanvasWidth  = 960.0
	CanvasHeight = 540.0
)

// Align is the horizontal text alignment of a region.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Box is a rectangle on the reference canvas.
type Box struct {
	X, Y, W, H float64
}

// Region is one positioned text block of a slide layout. Name doubles as
// the animation target for that block.
type Region struct {
	Name     string
	Text     string
	Box      Box
	FontSize float64 // points on the reference canvas
	Bold     bool
	Align    Align
}

// Region names used as animation targets.
const (
	RegionTitle            = "title"
	RegionContent          = "content"
	RegionContentLeft      = "contentLeft"
	RegionContentRight     = "contentRight"
	RegionCompLeftTitle    = "compLeftTitle"
	RegionCompLeftContent  = "compLeftContent"
	RegionCompRightTitle   = "compRightTitle"
	RegionCompRightContent = "compRightContent"
	RegionImage            = "image"
)

var (
	titleBox     = Box{X: 60, Y: 40, W: 840, H: 90}
	bodyBox      = Box{X: 60, Y: 150, W: 840, H: 340}
	leftBox      = Box{X: 60, Y: 150, W: 400, H: 340}
	rightBox     = Box{X: 500, Y: 150, W: 400, H: 340}
	leftHeadBox  = Box{X: 60, Y: 150, W: 400, H: 50}
	rightHeadBox = Box{X: 500, Y: 150, W: 400, H: 50}
	leftBodyBox  = Box{X: 60, Y: 210, W: 400, H: 280}
	rightBodyBox = Box{X: 500, Y: 210, W: 400, H: 280}
)

// Regions returns the text blocks of s in paint order. Fields the layout
// does not use produce no region; empty fields still produce one so that
// animations bound to them keep a target.
func Regions(s models.Slide) []Region {
	title := Region{Name: RegionTitle, Text: s.Title, Box: titleBox, FontSize: 36, Bold: true}
	body := func(name, text string, b Box) Region {
		return Region{Name: name, Text: text, Box: b, FontSize: 20}
	}
	head := func(name, text string, b Box) Region {
		return Region{Name: name, Text: text, Box: b, FontSize: 24, Bold: true}
	}

	switch s.Layout {
	case models.LayoutBlank:
		return nil
	case models.LayoutTitleOnly:
		title.Box = Box{X: 60, Y: 200, W: 840, H: 140}
		title.FontSize = 48
		title.Align = AlignCenter
		return []Region{title}
	case models.LayoutContentOnly:
		return []Region{body(RegionContent, s.Content, Box{X: 60, Y: 60, W: 840, H: 420})}
	case models.LayoutTwoColumn:
		return []Region{
			title,
			body(RegionContentLeft, s.ContentLeft, leftBox),
			body(RegionContentRight, s.ContentRight, rightBox),
		}
	case models.LayoutImageText:
		return []Region{title, body(RegionContent, s.Content, leftBox)}
	case models.LayoutComparison:
		return []Region{
			title,
			head(RegionCompLeftTitle, s.CompLeftTitle, leftHeadBox),
			body(RegionCompLeftContent, s.CompLeftContent, leftBodyBox),
			head(RegionCompRightTitle, s.CompRightTitle, rightHeadBox),
			body(RegionCompRightContent, s.CompRightContent, rightBodyBox),
		}
	default:
		return []Region{title, body(RegionContent, s.Content, bodyBox)}
	}
}

// ImageBox returns where the layout image of an image-text slide goes.
func ImageBox(s models.Slide) (Box, bool) {
	if s.Layout != models.LayoutImageText || s.ImageURL == "" {
		return Box{}, false
	}
	return rightBox, true
}
