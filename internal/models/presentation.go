// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Presentation is the canonical database record for a deck. The full
// slide data lives in Document; Title mirrors Document.Meta.Title so
// listings don't need to decode the document.
type Presentation struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Document  Document  `json:"document"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PresentationSummary is the lightweight listing form of a Presentation.
type PresentationSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	SlideCount int       `json:"slide_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Revision stores a named snapshot of a presentation taken on explicit
// save. Unlike undo history, revisions survive restarts.
type Revision struct {
	ID             uuid.UUID `json:"id"`
	PresentationID uuid.UUID `json:"presentation_id"`
	Title          string    `json:"title"`
	Document       Document  `json:"document"`
	Message        string    `json:"message"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
