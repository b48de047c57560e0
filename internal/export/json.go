// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"deckpress/internal/models"
)

// JSONExporter writes the lossless native document.
type JSONExporter struct{}

func (JSONExporter) Format() Format      { return FormatJSON }
func (JSONExporter) Extension() string   { return "json" }
func (JSONExporter) ContentType() string { return "application/json" }

func (e JSONExporter) Export(_ context.Context, job Job) (*Artifact, error) {
	data, err := MarshalDocument(job.Document)
	if err != nil {
		return nil, &EncodeError{Format: FormatJSON, Err: err}
	}
	return &Artifact{Data: data, Pages: len(job.Document.Slides)}, nil
}

// MarshalDocument encodes doc in the native indented form.
func MarshalDocument(doc models.Document) ([]byte, error) {
	if doc.Slides == nil {
		doc.Slides = []models.Slide{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportJSON reads a native document. A bare slide array is accepted as
// well. Documents without slides are rejected.
func ImportJSON(r io.Reader) (models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("read document: %w", err)
	}
	data = bytes.TrimSpace(data)

	var doc models.Document
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &doc.Slides); err != nil {
			return models.Document{}, &ValidationError{Field: "document", Msg: err.Error()}
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, &ValidationError{Field: "document", Msg: err.Error()}
	}

	if len(doc.Slides) == 0 {
		return models.Document{}, EmptyInputError{}
	}
	for i, s := range doc.Slides {
		if s.Layout != "" && !s.Layout.Valid() {
			return models.Document{}, &ValidationError{
				Field: "layout",
				Msg:   fmt.Sprintf("slide %d has unknown layout %q", i+1, s.Layout),
			}
		}
	}
	return doc, nil
}
