// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deckpress/internal/cache"
	"deckpress/internal/export"
	"deckpress/internal/storage"
)

// fallbackHeader names the format that failed when a JSON fallback is
// delivered instead.
const fallbackHeader = "X-Export-Fallback"

// Formats lists the registered export formats.
func (d *Decks) Formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Pipeline.Registry().Formats())
}

// Export renders the presentation in {format} and sends it as a download.
// Results are cached per document content, so repeated downloads of an
// unchanged deck skip the encoder.
func (d *Decks) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	format := export.ParseFormat(chi.URLParam(r, "format"))
	if _, known := d.Pipeline.Registry().Lookup(format); !known {
		writeError(w, http.StatusBadRequest, "Unsupported export format.")
		return
	}
	filename := r.URL.Query().Get("filename")
	if msg := validateFilename(filename); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	doc := ws.Document()
	var key string
	if d.Artifacts != nil {
		hash, _, err := storage.Hash(doc)
		if err == nil {
			key = cache.ArtifactKey(hash, format, filename)
			if art, hit := d.Artifacts.Get(r.Context(), key); hit {
				writeArtifact(w, art, "HIT")
				return
			}
		}
	}

	art, err := d.Pipeline.Export(r.Context(), doc, filename, format)
	if err != nil {
		var vErr *export.ValidationError
		switch {
		case errors.Is(err, export.ErrEmptyInput):
			writeError(w, http.StatusUnprocessableEntity, "The presentation has no slides.")
		case errors.As(err, &vErr):
			writeError(w, http.StatusBadRequest, vErr.Error())
		case r.Context().Err() != nil:
			// Client went away.
		default:
			internalError(w, "export failed", err)
		}
		return
	}
	if art.FallbackFrom != "" {
		d.Logger.Warn("export delivered as json fallback",
			"presentation", ws.ID, "requested", art.FallbackFrom)
	}
	if key != "" {
		d.Artifacts.Set(r.Context(), key, art)
	}
	writeArtifact(w, art, "MISS")
}

func writeArtifact(w http.ResponseWriter, art *export.Artifact, cacheStatus string) {
	h := w.Header()
	h.Set("Content-Type", art.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(art.Data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	h.Set("X-Cache", cacheStatus)
	if art.FallbackFrom != "" {
		h.Set(fallbackHeader, string(art.FallbackFrom))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}
