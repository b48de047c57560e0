package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"deckpress/internal/middleware"
	"deckpress/internal/models"
	"deckpress/internal/slides"
)

// Save flushes the presentation to the canonical store and records a
// named revision.
func (d *Decks) Save(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	req.Message = strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		writeError(w, http.StatusUnprocessableEntity, "Message is too long (max 1,000 characters).")
		return
	}

	// Save commits pending draft edits, so they belong in the revision.
	if err := d.Workspace.Save(r.Context(), ws); err != nil {
		internalError(w, "save presentation failed", err)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	rev, err := d.Revisions.Create(&models.Revision{
		PresentationID: ws.ID,
		Document:       ws.Document(),
		Message:        req.Message,
		CreatedBy:      sess.UserID,
	})
	if err != nil {
		internalError(w, "create revision failed", err)
		return
	}
	d.Logger.Info("presentation saved", "presentation", ws.ID, "revision", rev.ID)
	writeJSON(w, http.StatusCreated, revisionSummary(rev))
}

type revisionItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	SlideCount int       `json:"slide_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func revisionSummary(rev *models.Revision) revisionItem {
	return revisionItem{
		ID:         rev.ID.String(),
		Title:      rev.Title,
		Message:    rev.Message,
		SlideCount: len(rev.Document.Slides),
		CreatedAt:  rev.CreatedAt,
	}
}

// ListRevisions lists saved revisions, newest first.
func (d *Decks) ListRevisions(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	revs, err := d.Revisions.ListByPresentation(ws.ID)
	if err != nil {
		internalError(w, "list revisions failed", err)
		return
	}
	out := make([]revisionItem, 0, len(revs))
	for _, rev := range revs {
		out = append(out, revisionSummary(rev))
	}
	writeJSON(w, http.StatusOK, out)
}

// RestoreRevision loads the slides of a revision as a new, undoable edit.
// Document meta is kept.
func (d *Decks) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	rid, ok := uuidParam(r, "rid")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid revision id.")
		return
	}
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	rev, err := d.Revisions.FindByID(rid)
	if err != nil {
		internalError(w, "find revision failed", err)
		return
	}
	if rev == nil || rev.PresentationID != ws.ID {
		writeError(w, http.StatusNotFound, "Revision not found.")
		return
	}

	var out deckState
	ws.Do(func(st *slides.Store) {
		changed := st.Load(rev.Document.Slides)
		out = stateOf(ws.ID, st, changed)
	})
	d.Logger.Info("revision restored", "presentation", ws.ID, "revision", rev.ID)
	writeJSON(w, http.StatusOK, out)
}
