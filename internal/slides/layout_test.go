package slides

import (
	"testing"

	"deckpress/internal/models"
)

func TestLayoutRoundTripTwoColumn(t *testing.T) {
	s := newTestStore(t)
	s.ApplyLayout(0, models.LayoutTwoColumn)
	s.UpdateSlide(0, SlidePatch{ContentLeft: strPtr("A"), ContentRight: strPtr("B")}, false)

	s.ApplyLayout(0, models.LayoutTitleContent)
	sl, _ := s.Slide(0)
	if sl.Content != "A\n\nB" {
		t.Fatalf("content = %q, want %q", sl.Content, "A\n\nB")
	}
	if sl.ContentLeft != "" || sl.ContentRight != "" {
		t.Errorf("column fields not cleared: %+v", sl)
	}

	s.ApplyLayout(0, models.LayoutTwoColumn)
	sl, _ = s.Slide(0)
	if sl.ContentLeft != "A" || sl.ContentRight != "B" {
		t.Errorf("columns = %q/%q, want A/B", sl.ContentLeft, sl.ContentRight)
	}
	if sl.Content != "" {
		t.Errorf("content not cleared: %q", sl.Content)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		from Body
		to   models.Layout
		want Body
	}{
		{
			name: "title-content splits into columns",
			from: TitleContentBody{Title: "T", Content: "left\n\nright"},
			to:   models.LayoutTwoColumn,
			want: TwoColumnBody{Title: "T", Left: "left", Right: "right"},
		},
		{
			name: "title-content without separator stays left",
			from: TitleContentBody{Title: "T", Content: "only"},
			to:   models.LayoutTwoColumn,
			want: TwoColumnBody{Title: "T", Left: "only"},
		},
		{
			name: "empty left column survives the fold",
			from: TwoColumnBody{Left: "", Right: "R"},
			to:   models.LayoutTitleContent,
			want: TitleContentBody{Content: "\n\nR"},
		},
		{
			name: "two-column to comparison gets default headings",
			from: TwoColumnBody{Title: "T", Left: "a", Right: "b"},
			to:   models.LayoutComparison,
			want: ComparisonBody{Title: "T", LeftTitle: "Option A", LeftContent: "a", RightTitle: "Option B", RightContent: "b"},
		},
		{
			name: "comparison to two-column drops headings",
			from: ComparisonBody{Title: "T", LeftTitle: "Pro", LeftContent: "a", RightTitle: "Con", RightContent: "b"},
			to:   models.LayoutTwoColumn,
			want: TwoColumnBody{Title: "T", Left: "a", Right: "b"},
		},
		{
			name: "comparison to title-content joins contents",
			from: ComparisonBody{Title: "T", LeftTitle: "Pro", LeftContent: "a", RightTitle: "Con", RightContent: "b"},
			to:   models.LayoutTitleContent,
			want: TitleContentBody{Title: "T", Content: "a\n\nb"},
		},
		{
			name: "image-text to title-content drops image",
			from: ImageTextBody{Title: "T", Content: "c", ImageURL: "data:image/png;base64,AA=="},
			to:   models.LayoutTitleContent,
			want: TitleContentBody{Title: "T", Content: "c"},
		},
		{
			name: "title-only drops content",
			from: TitleContentBody{Title: "T", Content: "c"},
			to:   models.LayoutTitleOnly,
			want: TitleOnlyBody{Title: "T"},
		},
		{
			name: "content-only drops title",
			from: TitleContentBody{Title: "T", Content: "c"},
			to:   models.LayoutContentOnly,
			want: ContentOnlyBody{Content: "c"},
		},
		{
			name: "blank drops everything",
			from: TitleContentBody{Title: "T", Content: "c"},
			to:   models.LayoutBlank,
			want: BlankBody{},
		},
		{
			name: "unknown target reads as title-content",
			from: TitleOnlyBody{Title: "T"},
			to:   "hexagon",
			want: TitleContentBody{Title: "T"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.from, tt.to)
			if got != tt.want {
				t.Errorf("Convert() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestWithLayoutClearsUnusedFields(t *testing.T) {
	in := models.Slide{
		ID:               7,
		Layout:           models.LayoutComparison,
		Title:            "T",
		CompLeftTitle:    "L",
		CompLeftContent:  "l",
		CompRightTitle:   "R",
		CompRightContent: "r",
		Notes:            "keep me",
		Background:       "#000",
	}
	out := WithLayout(in, models.LayoutImageText)

	if out.CompLeftTitle != "" || out.CompRightContent != "" {
		t.Errorf("comparison fields kept: %+v", out)
	}
	if out.Content != "l\n\nr" || out.Title != "T" {
		t.Errorf("content = %q title = %q", out.Content, out.Title)
	}
	if out.Notes != "keep me" || out.Background != "#000" || out.ID != 7 {
		t.Errorf("non-layout fields changed: %+v", out)
	}
	if in.CompLeftTitle != "L" {
		t.Error("input slide was modified")
	}
}

func TestApplySameLayoutIsNoop(t *testing.T) {
	s := newTestStore(t)
	if s.ApplyLayout(0, models.LayoutTitleContent) {
		t.Error("ApplyLayout to the current layout should be a no-op")
	}
}
