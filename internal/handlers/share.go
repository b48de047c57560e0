package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"deckpress/internal/middleware"
	"deckpress/internal/storage"
)

// Share uploads the current document to object storage and returns its
// content hash. Sharing an unchanged deck twice yields the same hash.
func (d *Decks) Share(w http.ResponseWriter, r *http.Request) {
	if d.Blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Sharing is not configured.")
		return
	}
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	hash, err := d.Blobs.Save(r.Context(), ws.Document())
	if err != nil {
		internalError(w, "share upload failed", err)
		return
	}
	d.Logger.Info("presentation shared", "presentation", ws.ID, "hash", hash)
	out := map[string]string{"hash": hash, "url": "/api/shared/" + hash}
	if p, ok := d.Blobs.(presigner); ok {
		if u, err := p.PresignedURL(r.Context(), hash, shareLinkTTL); err == nil {
			out["download_url"] = u
		} else {
			d.Logger.Warn("share presign failed", "hash", hash, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, out)
}

// shareLinkTTL bounds direct object-storage links.
const shareLinkTTL = 24 * time.Hour

// presigner is implemented by blob stores that can hand out direct links.
type presigner interface {
	PresignedURL(ctx context.Context, hash string, expires time.Duration) (string, error)
}

// Shared returns a read-only shared document. It needs no session.
func (d *Decks) Shared(w http.ResponseWriter, r *http.Request) {
	if d.Blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Sharing is not configured.")
		return
	}
	doc, err := d.Blobs.Load(r.Context(), chi.URLParam(r, "hash"))
	switch {
	case errors.Is(err, storage.ErrInvalidHash):
		writeError(w, http.StatusBadRequest, "Invalid share hash.")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Shared presentation not found.")
	case err != nil:
		internalError(w, "shared load failed", err)
	default:
		w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
		writeJSON(w, http.StatusOK, doc)
	}
}

// Recent lists the presentations the caller opened most recently.
func (d *Decks) Recent(w http.ResponseWriter, r *http.Request) {
	d.userList(w, r, "recent")
}

// Favorites lists the caller's favourite presentations.
func (d *Decks) Favorites(w http.ResponseWriter, r *http.Request) {
	d.userList(w, r, "favorites")
}

func (d *Decks) userList(w http.ResponseWriter, r *http.Request, which string) {
	if d.Repo == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	uid := middleware.SessionFromCtx(r.Context()).UserID.String()
	var (
		ids []string
		err error
	)
	if which == "recent" {
		ids, err = d.Repo.Recent(r.Context(), uid)
	} else {
		ids, err = d.Repo.Favorites(r.Context(), uid)
	}
	if err != nil {
		internalError(w, "load "+which+" failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// AddFavorite marks a presentation the caller owns as favourite.
func (d *Decks) AddFavorite(w http.ResponseWriter, r *http.Request) {
	d.editFavorite(w, r, true)
}

// RemoveFavorite unmarks a favourite.
func (d *Decks) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	d.editFavorite(w, r, false)
}

func (d *Decks) editFavorite(w http.ResponseWriter, r *http.Request, add bool) {
	if d.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "Favourites are not available.")
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid presentation id.")
		return
	}

	var err error
	if add {
		p, ferr := d.Presentations.FindByID(id)
		if ferr != nil {
			internalError(w, "find presentation failed", ferr)
			return
		}
		if p == nil || p.OwnerID != sess.UserID {
			writeError(w, http.StatusNotFound, "Presentation not found.")
			return
		}
		err = d.Repo.AddFavorite(r.Context(), sess.UserID.String(), id.String())
	} else {
		err = d.Repo.RemoveFavorite(r.Context(), sess.UserID.String(), id.String())
	}
	if err != nil {
		internalError(w, "update favorites failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
