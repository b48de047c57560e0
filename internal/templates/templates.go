// Package templates exposes the built-in presentation presets. The
// catalog is embedded YAML; each preset carries theme colours and the
// starter slides of a new presentation.
package templates

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"deckpress/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// StarterSlide is a slide body in the catalog. Colours come from the
// template.
type StarterSlide struct {
	Layout           models.Layout `yaml:"layout" json:"layout"`
	Title            string        `yaml:"title" json:"title,omitempty"`
	Content          string        `yaml:"content" json:"content,omitempty"`
	ContentLeft      string        `yaml:"contentLeft" json:"contentLeft,omitempty"`
	ContentRight     string        `yaml:"contentRight" json:"contentRight,omitempty"`
	CompLeftTitle    string        `yaml:"compLeftTitle" json:"compLeftTitle,omitempty"`
	CompLeftContent  string        `yaml:"compLeftContent" json:"compLeftContent,omitempty"`
	CompRightTitle   string        `yaml:"compRightTitle" json:"compRightTitle,omitempty"`
	CompRightContent string        `yaml:"compRightContent" json:"compRightContent,omitempty"`
}

// Template is one preset.
type Template struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Background  string         `yaml:"background" json:"background"`
	TextColor   string         `yaml:"textColor" json:"textColor"`
	Slides      []StarterSlide `yaml:"slides" json:"slides"`
}

// Catalog is the ordered set of presets.
type Catalog struct {
	list []Template
	byID map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse reads a catalog from YAML and validates it.
func Parse(data []byte) (*Catalog, error) {
	var list []Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	c := &Catalog{list: list, byID: make(map[string]int, len(list))}
	for i, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if len(t.Slides) == 0 {
			return nil, fmt.Errorf("template %q has no slides", t.ID)
		}
		for _, s := range t.Slides {
			if !s.Layout.Valid() {
				return nil, fmt.Errorf("template %q: unknown layout %q", t.ID, s.Layout)
			}
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// List returns the presets in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.list))
	copy(out, c.list)
	return out
}

// Get returns the preset with id.
func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.list[i], true
}

// Document builds a new presentation from the preset. Slide ids are
// derived from now in milliseconds, matching the store's id scheme.
func (t Template) Document(title, author string, now time.Time) models.Document {
	now = now.UTC()
	base := now.UnixMilli()
	doc := models.Document{
		Meta: models.Meta{
			Title:       title,
			Author:      author,
			CreatedAt:   now,
			UpdatedAt:   now,
			ThemePreset: t.ID,
		},
	}
	for i, s := range t.Slides {
		doc.Slides = append(doc.Slides, models.Slide{
			ID:               base + int64(i),
			Title:            s.Title,
			Content:          s.Content,
			ContentLeft:      s.ContentLeft,
			ContentRight:     s.ContentRight,
			CompLeftTitle:    s.CompLeftTitle,
			CompLeftContent:  s.CompLeftContent,
			CompRightTitle:   s.CompRightTitle,
			CompRightContent: s.CompRightContent,
			Background:       t.Background,
			TextColor:        t.TextColor,
			Layout:           s.Layout,
		})
	}
	return doc
}
