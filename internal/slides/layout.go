// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slides

import (
	"strings"

	"deckpress/internal/models"
)

// columnSeparator joins the two halves of a split layout when they are
// folded into a single content field.
const columnSeparator = "\n\n"

// Default headings given to comparison columns created from other layouts.
const (
	defaultCompLeftTitle  = "Option A"
	defaultCompRightTitle = "Option B"
)

// Body is the layout-specific content of a slide. Each layout has exactly
// one Body variant; Convert maps any variant onto any layout.
type Body interface {
	Layout() models.Layout
}

type BlankBody struct{}

type TitleOnlyBody struct {
	Title string
}

type ContentOnlyBody struct {
	Content string
}

type TitleContentBody struct {
	Title   string
	Content string
}

type TwoColumnBody struct {
	Title string
	Left  string
	Right string
}

type ImageTextBody struct {
	Title    string
	Content  string
	ImageURL string
}

type ComparisonBody struct {
	Title        string
	LeftTitle    string
	LeftContent  string
	RightTitle   string
	RightContent string
}

func (BlankBody) Layout() models.Layout        { return models.LayoutBlank }
func (TitleOnlyBody) Layout() models.Layout    { return models.LayoutTitleOnly }
func (ContentOnlyBody) Layout() models.Layout  { return models.LayoutContentOnly }
func (TitleContentBody) Layout() models.Layout { return models.LayoutTitleContent }
func (TwoColumnBody) Layout() models.Layout    { return models.LayoutTwoColumn }
func (ImageTextBody) Layout() models.Layout    { return models.LayoutImageText }
func (ComparisonBody) Layout() models.Layout   { return models.LayoutComparison }

// BodyOf reads the layout-specific fields of s. Slides with an unknown
// layout are read as title-content.
func BodyOf(s models.Slide) Body {
	switch s.Layout {
	case models.LayoutBlank:
		return BlankBody{}
	case models.LayoutTitleOnly:
		return TitleOnlyBody{Title: s.Title}
	case models.LayoutContentOnly:
		return ContentOnlyBody{Content: s.Content}
	case models.LayoutTwoColumn:
		return TwoColumnBody{Title: s.Title, Left: s.ContentLeft, Right: s.ContentRight}
	case models.LayoutImageText:
		return ImageTextBody{Title: s.Title, Content: s.Content, ImageURL: s.ImageURL}
	case models.LayoutComparison:
		return ComparisonBody{
			Title:        s.Title,
			LeftTitle:    s.CompLeftTitle,
			LeftContent:  s.CompLeftContent,
			RightTitle:   s.CompRightTitle,
			RightContent: s.CompRightContent,
		}
	default:
		return TitleContentBody{Title: s.Title, Content: s.Content}
	}
}

// Convert translates b into the body of layout to. Split layouts fold
// into one content field joined by a blank line, and single-content
// layouts split back at the first blank line.
func Convert(b Body, to models.Layout) Body {
	title, left, right := flatten(b)

	switch to {
	case models.LayoutBlank:
		return BlankBody{}
	case models.LayoutTitleOnly:
		return TitleOnlyBody{Title: title}
	case models.LayoutContentOnly:
		return ContentOnlyBody{Content: joinColumns(left, right)}
	case models.LayoutTwoColumn:
		return TwoColumnBody{Title: title, Left: left, Right: right}
	case models.LayoutImageText:
		img := ""
		if it, ok := b.(ImageTextBody); ok {
			img = it.ImageURL
		}
		return ImageTextBody{Title: title, Content: joinColumns(left, right), ImageURL: img}
	case models.LayoutComparison:
		if c, ok := b.(ComparisonBody); ok {
			return c
		}
		return ComparisonBody{
			Title:        title,
			LeftTitle:    defaultCompLeftTitle,
			LeftContent:  left,
			RightTitle:   defaultCompRightTitle,
			RightContent: right,
		}
	default:
		return TitleContentBody{Title: title, Content: joinColumns(left, right)}
	}
}

// flatten reduces a body to its title and a left/right content pair.
// Single-content bodies are split at the first blank line.
func flatten(b Body) (title, left, right string) {
	switch v := b.(type) {
	case TitleOnlyBody:
		return v.Title, "", ""
	case ContentOnlyBody:
		left, right = splitColumns(v.Content)
		return "", left, right
	case TitleContentBody:
		left, right = splitColumns(v.Content)
		return v.Title, left, right
	case TwoColumnBody:
		return v.Title, v.Left, v.Right
	case ImageTextBody:
		left, right = splitColumns(v.Content)
		return v.Title, left, right
	case ComparisonBody:
		return v.Title, v.LeftContent, v.RightContent
	default:
		return "", "", ""
	}
}

func joinColumns(left, right string) string {
	if right == "" {
		return left
	}
	return left + columnSeparator + right
}

func splitColumns(content string) (left, right string) {
	i := strings.Index(content, columnSeparator)
	if i < 0 {
		return content, ""
	}
	return content[:i], content[i+len(columnSeparator):]
}

// applyBody writes b into s, clearing every layout field b does not use.
func applyBody(s *models.Slide, b Body) {
	s.Layout = b.Layout()
	s.Title, s.Content = "", ""
	s.ContentLeft, s.ContentRight = "", ""
	s.CompLeftTitle, s.CompLeftContent = "", ""
	s.CompRightTitle, s.CompRightContent = "", ""
	s.ImageURL = ""

	switch v := b.(type) {
	case TitleOnlyBody:
		s.Title = v.Title
	case ContentOnlyBody:
		s.Content = v.Content
	case TitleContentBody:
		s.Title, s.Content = v.Title, v.Content
	case TwoColumnBody:
		s.Title, s.ContentLeft, s.ContentRight = v.Title, v.Left, v.Right
	case ImageTextBody:
		s.Title, s.Content, s.ImageURL = v.Title, v.Content, v.ImageURL
	case ComparisonBody:
		s.Title = v.Title
		s.CompLeftTitle, s.CompLeftContent = v.LeftTitle, v.LeftContent
		s.CompRightTitle, s.CompRightContent = v.RightTitle, v.RightContent
	}
}

// WithLayout returns a copy of s converted to layout to.
func WithLayout(s models.Slide, to models.Layout) models.Slide {
	out := s.Clone()
	applyBody(&out, Convert(BodyOf(s), to))
	return out
}
