// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"deckpress/internal/models"
	"deckpress/internal/slides"
)

// ImportPPTX reads the text of a PowerPoint file. The first non-empty
// paragraph of each slide becomes its title and the remaining paragraphs
// its content. Formatting, images and animations are not imported.
func ImportPPTX(path string) (models.Document, error) {
	pres, err := (&ppt.PPTXReader{}).Read(path)
	if err != nil {
		return models.Document{}, &ValidationError{Field: "pptx", Msg: err.Error()}
	}

	var doc models.Document
	for i, slide := range pres.GetAllSlides() {
		var title string
		var body []string
		for _, shape := range slide.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			for _, para := range rts.GetParagraphs() {
				var text strings.Builder
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						text.WriteString(run.GetText())
					}
				}
				line := strings.TrimSpace(text.String())
				if line == "" {
					continue
				}
				if title == "" {
					title = line
				} else {
					body = append(body, line)
				}
			}
		}
		doc.Slides = append(doc.Slides, models.Slide{
			ID:         int64(i + 1),
			Title:      title,
			Content:    strings.Join(body, "\n"),
			Background: slides.DefaultBackground,
			TextColor:  slides.DefaultTextColor,
			Layout:     models.LayoutTitleContent,
		})
	}
	if len(doc.Slides) == 0 {
		return models.Document{}, EmptyInputError{}
	}
	doc.Meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if t := pres.GetDocumentProperties().Title; t != "" {
		doc.Meta.Title = t
	}
	return doc, nil
}

// ImportPPTXFrom stages r in a temporary file and imports it. name is used
// for the document title when the file carries none.
func ImportPPTXFrom(r io.Reader, name string) (models.Document, error) {
	tmp, err := os.CreateTemp("", "import-*.pptx")
	if err != nil {
		return models.Document{}, &IOError{Path: name, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return models.Document{}, &IOError{Path: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return models.Document{}, &IOError{Path: name, Err: err}
	}

	doc, err := ImportPPTX(tmp.Name())
	if err != nil {
		return models.Document{}, fmt.Errorf("import %s: %w", name, err)
	}
	if base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)); base != "" &&
		strings.HasPrefix(doc.Meta.Title, "import-") {
		doc.Meta.Title = base
	}
	return doc, nil
}
