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

// revisionColumns lists all columns for presentation_revisions SELECTs.
const revisionColumns = `id, presentation_id, title, document, message, created_by, created_at`

// RevisionStore provides access to saved presentation revisions in PostgreSQL.
type RevisionStore struct {
	db *sql.DB
}

// NewRevisionStore creates a new RevisionStore backed by the given database.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// scanRevision scans a single presentation_revisions row into a Revision.
func scanRevision(scanner interface{ Scan(...any) error }) (*models.Revision, error) {
	var r models.Revision
	var raw []byte
	err := scanner.Scan(&r.ID, &r.PresentationID, &r.Title, &raw, &r.Message, &r.CreatedBy, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &r.Document); err != nil {
		return nil, fmt.Errorf("decode revision %s: %w", r.ID, err)
	}
	return &r, nil
}

// Create inserts a new revision and returns it with the generated ID.
func (s *RevisionStore) Create(rev *models.Revision) (*models.Revision, error) {
	raw, err := json.Marshal(rev.Document)
	if err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}
	r, err := scanRevision(s.db.QueryRow(`
		INSERT INTO presentation_revisions (presentation_id, title, document, message, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+revisionColumns,
		rev.PresentationID, rev.Document.Meta.Title, raw, rev.Message, rev.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}
	return r, nil
}

// ListByPresentation returns all revisions for a presentation, newest first.
// Documents are included; callers building listings drop them.
func (s *RevisionStore) ListByPresentation(presentationID uuid.UUID) ([]*models.Revision, error) {
	rows, err := s.db.Query(`
		SELECT `+revisionColumns+`
		FROM presentation_revisions
		WHERE presentation_id = $1
		ORDER BY created_at DESC
	`, presentationID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*models.Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// FindByID returns a single revision by its ID, or nil if not found.
func (s *RevisionStore) FindByID(id uuid.UUID) (*models.Revision, error) {
	r, err := scanRevision(s.db.QueryRow(`
		SELECT `+revisionColumns+`
		FROM presentation_revisions
		WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	return r, nil
}

// Count returns the number of revisions for a presentation.
func (s *RevisionStore) Count(presentationID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM presentation_revisions WHERE presentation_id = $1
	`, presentationID).Scan(&count)
	return count, err
}
