// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"deckpress/internal/models"
)

const presentationColumns = `id, owner_id, title, document, created_at, updated_at`

// PresentationStore provides access to presentations in PostgreSQL. The
// document is stored as JSONB in its native {slides, meta} form.
type PresentationStore struct {
	db *sql.DB
}

// NewPresentationStore creates a new PresentationStore backed by the given database.
func NewPresentationStore(db *sql.DB) *PresentationStore {
	return &PresentationStore{db: db}
}

func scanPresentation(scanner interface{ Scan(...any) error }) (*models.Presentation, error) {
	var p models.Presentation
	var raw []byte
	if err := scanner.Scan(&p.ID, &p.OwnerID, &p.Title, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Document); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", p.ID, err)
	}
	return &p, nil
}

// Create inserts a presentation for owner. The title is taken from the
// document meta.
func (s *PresentationStore) Create(ownerID uuid.UUID, doc models.Document) (*models.Presentation, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("presentation create: %w", err)
	}
	p, err := scanPresentation(s.db.QueryRow(`
		INSERT INTO presentations (owner_id, title, document)
		VALUES ($1, $2, $3)
		RETURNING `+presentationColumns,
		ownerID, doc.Meta.Title, raw,
	))
	if err != nil {
		return nil, fmt.Errorf("presentation create: %w", err)
	}
	return p, nil
}

// FindByID returns a presentation by id, or nil if it doesn't exist.
func (s *PresentationStore) FindByID(id uuid.UUID) (*models.Presentation, error) {
	p, err := scanPresentation(s.db.QueryRow(`
		SELECT `+presentationColumns+` FROM presentations WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find presentation: %w", err)
	}
	return p, nil
}

// ListByOwner returns summaries of the owner's presentations, most
// recently updated first.
func (s *PresentationStore) ListByOwner(ownerID uuid.UUID) ([]models.PresentationSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, title, jsonb_array_length(document->'slides'), updated_at
		FROM presentations
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	defer rows.Close()

	var out []models.PresentationSummary
	for rows.Next() {
		var p models.PresentationSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.SlideCount, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan presentation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateDocument overwrites the stored document (last write wins).
func (s *PresentationStore) UpdateDocument(id uuid.UUID, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("presentation update: %w", err)
	}
	res, err := s.db.Exec(`
		UPDATE presentations SET title = $1, document = $2, updated_at = NOW() WHERE id = $3
	`, doc.Meta.Title, raw, id)
	if err != nil {
		return fmt.Errorf("presentation update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("presentation update %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a presentation and, by cascade, its revisions.
func (s *PresentationStore) Delete(id uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM presentations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("presentation delete: %w", err)
	}
	return nil
}
