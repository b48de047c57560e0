package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"deckpress/internal/models"
	"deckpress/internal/slides"
)

// mutate opens the presentation, runs op against its store and replies
// with the resulting state. op reports whether it changed anything;
// no-op requests still answer 200 with changed=false.
func (d *Decks) mutate(w http.ResponseWriter, r *http.Request, op func(st *slides.Store) bool) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	var out deckState
	ws.Do(func(st *slides.Store) {
		changed := op(st)
		out = stateOf(ws.ID, st, changed)
	})
	writeJSON(w, http.StatusOK, out)
}

// withIndex wraps an index-addressed slide operation.
func (d *Decks) withIndex(op func(st *slides.Store, index int) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid slide index.")
			return
		}
		d.mutate(w, r, func(st *slides.Store) bool { return op(st, index) })
	}
}

// AddSlide appends a slide. The body may name a layout.
func (d *Decks) AddSlide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout models.Layout `json:"layout"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Layout != "" && !req.Layout.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "Unknown layout.")
		return
	}
	d.mutate(w, r, func(st *slides.Store) bool {
		st.AddSlide(req.Layout)
		return true
	})
}

// UpdateSlide merges a partial slide. With ?draft=1 the edit is not
// recorded until the next commit.
func (d *Decks) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid slide index.")
		return
	}
	var patch slides.SlidePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusUnprocessableEntity, "Nothing to update.")
		return
	}
	if patch.Title != nil {
		if msg := validateTitle(*patch.Title); msg != "" {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}
	}
	draft := r.URL.Query().Get("draft") == "1" || r.URL.Query().Get("draft") == "true"
	d.mutate(w, r, func(st *slides.Store) bool { return st.UpdateSlide(index, patch, draft) })
}

// DeleteSlide removes one slide. The last slide is kept.
func (d *Decks) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	d.withIndex(func(st *slides.Store, i int) bool { return st.DeleteSlide(i) })(w, r)
}

// DuplicateSlide inserts a copy after the slide.
func (d *Decks) DuplicateSlide(w http.ResponseWriter, r *http.Request) {
	d.withIndex(func(st *slides.Store, i int) bool { return st.DuplicateSlide(i) })(w, r)
}

// SelectSlide makes a slide current.
func (d *Decks) SelectSlide(w http.ResponseWriter, r *http.Request) {
	d.withIndex(func(st *slides.Store, i int) bool { return st.SetCurrent(i) })(w, r)
}

// CopySlide puts a slide on the clipboard.
func (d *Decks) CopySlide(w http.ResponseWriter, r *http.Request) {
	d.withIndex(func(st *slides.Store, i int) bool { return st.Copy(i) })(w, r)
}

// ApplyLayout converts a slide to another layout.
func (d *Decks) ApplyLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout models.Layout `json:"layout"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Layout.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "Unknown layout.")
		return
	}
	d.withIndex(func(st *slides.Store, i int) bool { return st.ApplyLayout(i, req.Layout) })(w, r)
}

// ReorderSlides moves a slide from one position to another.
func (d *Decks) ReorderSlides(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.mutate(w, r, func(st *slides.Store) bool { return st.ReorderSlides(req.From, req.To) })
}

// SetAnimation binds an animation to a target on a slide.
func (d *Decks) SetAnimation(w http.ResponseWriter, r *http.Request) {
	var anim models.Animation
	if err := decodeJSON(w, r, &anim); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if anim.Target == "" || anim.Type == "" {
		writeError(w, http.StatusUnprocessableEntity, "Animation target and type are required.")
		return
	}
	if anim.Duration < 0 || anim.Delay < 0 {
		writeError(w, http.StatusUnprocessableEntity, "Duration and delay must not be negative.")
		return
	}
	d.withIndex(func(st *slides.Store, i int) bool { return st.SetAnimation(i, anim) })(w, r)
}

// RemoveAnimation unbinds the animation of {target}.
func (d *Decks) RemoveAnimation(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	d.withIndex(func(st *slides.Store, i int) bool { return st.RemoveAnimation(i, target) })(w, r)
}

// Paste appends the clipboard slide.
func (d *Decks) Paste(w http.ResponseWriter, r *http.Request) {
	d.mutate(w, r, (*slides.Store).Paste)
}

// Undo steps back one snapshot.
func (d *Decks) Undo(w http.ResponseWriter, r *http.Request) {
	d.mutate(w, r, (*slides.Store).Undo)
}

// Redo steps forward one snapshot.
func (d *Decks) Redo(w http.ResponseWriter, r *http.Request) {
	d.mutate(w, r, (*slides.Store).Redo)
}

// Commit records pending draft edits.
func (d *Decks) Commit(w http.ResponseWriter, r *http.Request) {
	d.mutate(w, r, (*slides.Store).Commit)
}
