package templates

import (
	"strings"
	"testing"
	"time"

	"deckpress/internal/models"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	list := c.List()
	if len(list) < 2 {
		t.Fatalf("catalog has %d templates", len(list))
	}
	if list[0].ID != "blank" {
		t.Errorf("first template = %q, want blank", list[0].ID)
	}
	if _, ok := c.Get("midnight"); !ok {
		t.Error("midnight preset missing")
	}
	if _, ok := c.Get("nope"); ok {
		t.Error("Get returned a template for an unknown id")
	}
}

func TestTemplateDocument(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tmpl, _ := c.Get("report")
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	doc := tmpl.Document("Q1", "Ana", now)

	if doc.Meta.Title != "Q1" || doc.Meta.Author != "Ana" || doc.Meta.ThemePreset != "report" {
		t.Errorf("meta = %+v", doc.Meta)
	}
	if len(doc.Slides) != len(tmpl.Slides) {
		t.Fatalf("got %d slides, want %d", len(doc.Slides), len(tmpl.Slides))
	}
	seen := map[int64]bool{}
	for _, s := range doc.Slides {
		if seen[s.ID] {
			t.Errorf("duplicate id %d", s.ID)
		}
		seen[s.ID] = true
		if s.Background != tmpl.Background || s.TextColor != tmpl.TextColor {
			t.Errorf("slide %d colours = %s/%s", s.ID, s.Background, s.TextColor)
		}
	}
	if doc.Slides[1].Layout != models.LayoutTwoColumn || !strings.Contains(doc.Slides[1].ContentRight, "Roadmap") {
		t.Errorf("two-column slide = %+v", doc.Slides[1])
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := map[string]string{
		"not yaml":     "{{",
		"missing id":   "- name: x\n  slides: [{layout: blank}]\n",
		"duplicate id": "- id: a\n  slides: [{layout: blank}]\n- id: a\n  slides: [{layout: blank}]\n",
		"no slides":    "- id: a\n",
		"bad layout":   "- id: a\n  slides: [{layout: hexagon}]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body)); err == nil {
				t.Error("Parse accepted an invalid catalog")
			}
		})
	}
}
