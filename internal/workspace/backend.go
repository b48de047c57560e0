package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"deckpress/internal/models"
	"deckpress/internal/persist"
)

// DocumentStore is the canonical presentation table.
type DocumentStore interface {
	FindByID(id uuid.UUID) (*models.Presentation, error)
	UpdateDocument(id uuid.UUID, doc models.Document) error
}

// BlobMirror is remote content-addressed storage.
type BlobMirror interface {
	Save(ctx context.Context, doc models.Document) (string, error)
}

// StoreBackend keeps documents in the canonical store and mirrors the
// document plus its undo history into the key-value repo, so a restarted
// server reopens a presentation with its history intact. When Blobs is
// set every save also uploads the document to remote storage.
type StoreBackend struct {
	Presentations DocumentStore
	Repo          *persist.Repo
	Blobs         BlobMirror
	Logger        *slog.Logger
}

func (b *StoreBackend) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Load reads the presentation and, when available, its undo history.
// Returns (nil, nil) if the presentation does not exist.
func (b *StoreBackend) Load(ctx context.Context, id uuid.UUID) (*State, error) {
	p, err := b.Presentations.FindByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	st := &State{OwnerID: p.OwnerID, Document: p.Document}
	if b.Repo == nil {
		return st, nil
	}
	hist, err := b.Repo.LoadHistory(ctx, id.String())
	switch {
	case err == nil:
		st.History = &hist
	case errors.Is(err, persist.ErrNotFound):
	default:
		b.logger().Warn("undo history unavailable", "presentation", id, "error", err)
	}
	return st, nil
}

// Save writes the document to the canonical store, then mirrors it to
// remote storage and the repo. Mirror failures are logged; only a failed
// canonical write is returned.
func (b *StoreBackend) Save(ctx context.Context, id uuid.UUID, st State) error {
	if err := b.Presentations.UpdateDocument(id, st.Document); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	if b.Blobs != nil {
		if hash, err := b.Blobs.Save(ctx, st.Document); err != nil {
			b.logger().Warn("remote save failed", "presentation", id, "error", err)
		} else {
			b.logger().Debug("remote save", "presentation", id, "hash", hash)
		}
	}
	if b.Repo == nil {
		return nil
	}
	if err := b.Repo.SaveDocument(ctx, id.String(), st.Document); err != nil {
		b.logger().Warn("document mirror failed", "presentation", id, "error", err)
	}
	if st.History != nil {
		if err := b.Repo.SaveHistory(ctx, id.String(), *st.History); err != nil {
			b.logger().Warn("history mirror failed", "presentation", id, "error", err)
		}
	}
	return nil
}
