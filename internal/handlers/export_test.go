package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"deckpress/internal/export"
	"deckpress/internal/models"
)

func TestSaveAndRestoreRevision(t *testing.T) {
	env := newDecksEnv(t)
	id := env.createDeck(t, "Versions", "blank").ID

	env.call(t, env.Decks.UpdateSlide, http.MethodPatch, id, map[string]string{"title": "First cut"}, "index", "0")
	rec := env.call(t, env.Decks.Save, http.MethodPost, id, map[string]string{"message": "v1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: got %d: %s", rec.Code, rec.Body.String())
	}
	var saved revisionItem
	json.Unmarshal(rec.Body.Bytes(), &saved)
	if saved.Message != "v1" || saved.SlideCount != 1 || saved.Title != "Versions" {
		t.Errorf("revision: %+v", saved)
	}

	p, _ := env.Presentations.FindByID(id)
	if p.Document.Slides[0].Title != "First cut" {
		t.Error("save did not flush the document to the store")
	}
	ws, _ := env.Workspace.Open(t.Context(), id)
	if ws.Dirty() {
		t.Error("session should be clean after save")
	}

	env.call(t, env.Decks.AddSlide, http.MethodPost, id, nil)
	env.call(t, env.Decks.UpdateSlide, http.MethodPatch, id, map[string]string{"title": "Second cut"}, "index", "0")

	rec = env.call(t, env.Decks.ListRevisions, http.MethodGet, id, nil)
	var list []revisionItem
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].ID != saved.ID {
		t.Fatalf("revisions: %+v", list)
	}

	st := decodeState(t, env.call(t, env.Decks.RestoreRevision, http.MethodPost, id, nil, "rid", saved.ID))
	if len(st.Slides) != 1 || st.Slides[0].Title != "First cut" {
		t.Errorf("restored: %+v", st.Slides)
	}
	st = decodeState(t, env.call(t, env.Decks.Undo, http.MethodPost, id, nil))
	if len(st.Slides) != 2 || st.Slides[0].Title != "Second cut" {
		t.Errorf("restore should be undoable: %+v", st.Slides)
	}

	if rec := env.call(t, env.Decks.RestoreRevision, http.MethodPost, id, nil, "rid", uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Errorf("unknown revision: got %d", rec.Code)
	}
}

func TestSaveCommitsDraft(t *testing.T) {
	env := newDecksEnv(t)
	id := env.createDeck(t, "Draft save", "blank").ID

	r := newRequest(t, http.MethodPatch, "/?draft=1", map[string]string{"content": "typing"},
		env.User, "id", id.String(), "index", "0")
	serve(env.Decks.UpdateSlide, r)

	if rec := env.call(t, env.Decks.Save, http.MethodPost, id, nil); rec.Code != http.StatusCreated {
		t.Fatalf("save: got %d", rec.Code)
	}
	st := decodeState(t, env.call(t, env.Decks.Get, http.MethodGet, id, nil))
	if st.History.Length != 2 {
		t.Errorf("draft should be committed on save, history length %d", st.History.Length)
	}
	revs, _ := env.Revisions.ListByPresentation(id)
	if revs[0].Document.Slides[0].Content != "typing" {
		t.Error("revision misses the draft edit")
	}
}

func TestExportDownloadAndCache(t *testing.T) {
	env := newDecksEnv(t)
	id := env.createDeck(t, "Quarterly Review", "blank").ID

	exp := func() *http.Response {
		r := newRequest(t, http.MethodGet, "/export/json?filename=q3", nil, env.User,
			"id", id.String(), "format", "json")
		return serve(env.Decks.Export, r).Result()
	}

	first := exp()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", first.StatusCode)
	}
	if cd := first.Header.Get("Content-Disposition"); cd != `attachment; filename=q3.json` {
		t.Errorf("Content-Disposition: %q", cd)
	}
	if first.Header.Get("Content-Type") != "application/json" || first.Header.Get("X-Cache") != "MISS" {
		t.Errorf("headers: %v", first.Header)
	}
	var doc models.Document
	if err := json.NewDecoder(first.Body).Decode(&doc); err != nil || doc.Meta.Title != "Quarterly Review" {
		t.Errorf("body: %v %+v", err, doc.Meta)
	}

	if second := exp(); second.Header.Get("X-Cache") != "HIT" {
		t.Error("second identical export should come from the cache")
	}

	env.call(t, env.Decks.UpdateSlide, http.MethodPatch, id, map[string]string{"title": "Changed"}, "index", "0")
	if third := exp(); third.Header.Get("X-Cache") != "MISS" {
		t.Error("an edit must change the cache key")
	}
	if env.Artifacts.sets != 2 {
		t.Errorf("cache sets: got %d, want 2", env.Artifacts.sets)
	}
}

func TestExportFormats(t *testing.T) {
	env := newDecksEnv(t)
	id := env.createDeck(t, "Formats", "midnight").ID

	for _, format := range []string{"pptx", "docx", "html", "rtf", "txt", "odp"} {
		t.Run(format, func(t *testing.T) {
			r := newRequest(t, http.MethodGet, "/", nil, env.User, "id", id.String(), "format", format)
			rec := serve(env.Decks.Export, r)
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
			}
			if rec.Header().Get(fallbackHeader) != "" {
				t.Errorf("unexpected fallback from %s", format)
			}
			if !strings.HasSuffix(rec.Header().Get("Content-Disposition"), "."+format) {
				t.Errorf("Content-Disposition: %q", rec.Header().Get("Content-Disposition"))
			}
		})
	}

	r := newRequest(t, http.MethodGet, "/", nil, env.User, "id", id.String(), "format", "keynote")
	if rec := serve(env.Decks.Export, r); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format: got %d", rec.Code)
	}
	// No rasterizer is configured in tests, so pdf is not registered.
	r = newRequest(t, http.MethodGet, "/", nil, env.User, "id", id.String(), "format", "pdf")
	if rec := serve(env.Decks.Export, r); rec.Code != http.StatusBadRequest {
		t.Errorf("pdf without rasterizer: got %d", rec.Code)
	}

	rec := serve(env.Decks.Formats, newRequest(t, http.MethodGet, "/", nil, env.User))
	var formats []export.Format
	json.Unmarshal(rec.Body.Bytes(), &formats)
	if len(formats) != 7 {
		t.Errorf("formats: %v", formats)
	}
}

func TestShareAndLoadShared(t *testing.T) {
	env := newDecksEnv(t)
	id := env.createDeck(t, "Shared deck", "sunrise").ID

	rec := env.call(t, env.Decks.Share, http.MethodPost, id, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("share: got %d", rec.Code)
	}
	var out map[string]string
	json.Unmarshal(rec.Body.Bytes(), &out)
	hash := out["hash"]
	if len(hash) != 64 {
		t.Fatalf("hash: %q", hash)
	}

	again := env.call(t, env.Decks.Share, http.MethodPost, id, nil)
	var out2 map[string]string
	json.Unmarshal(again.Body.Bytes(), &out2)
	if out2["hash"] != hash {
		t.Error("sharing an unchanged deck should yield the same hash")
	}

	// Anonymous access.
	r := newRequest(t, http.MethodGet, "/api/shared/"+hash, nil, nil, "hash", hash)
	rec = serve(env.Decks.Shared, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("shared: got %d", rec.Code)
	}
	var doc models.Document
	json.Unmarshal(rec.Body.Bytes(), &doc)
	if doc.Meta.Title != "Shared deck" {
		t.Errorf("shared doc: %+v", doc.Meta)
	}

	for hashParam, want := range map[string]int{
		"short":                 http.StatusBadRequest,
		strings.Repeat("a", 64): http.StatusNotFound,
	} {
		r := newRequest(t, http.MethodGet, "/", nil, nil, "hash", hashParam)
		if rec := serve(env.Decks.Shared, r); rec.Code != want {
			t.Errorf("hash %q: got %d, want %d", hashParam, rec.Code, want)
		}
	}
}

func TestShareNotConfigured(t *testing.T) {
	env := newDecksEnv(t)
	env.Decks.Blobs = nil
	id := env.createDeck(t, "Local", "blank").ID

	if rec := env.call(t, env.Decks.Share, http.MethodPost, id, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("share: got %d", rec.Code)
	}
}

func TestFavoritesAndRecent(t *testing.T) {
	env := newDecksEnv(t)
	a := env.createDeck(t, "A", "blank").ID
	b := env.createDeck(t, "B", "blank").ID

	list := func(h http.HandlerFunc) []string {
		rec := serve(h, newRequest(t, http.MethodGet, "/", nil, env.User))
		var ids []string
		json.Unmarshal(rec.Body.Bytes(), &ids)
		return ids
	}

	if got := list(env.Decks.Recent); len(got) != 2 || got[0] != b.String() {
		t.Errorf("recent: %v", got)
	}
	env.call(t, env.Decks.Get, http.MethodGet, a, nil)
	if got := list(env.Decks.Recent); got[0] != a.String() {
		t.Errorf("recent after open: %v", got)
	}

	if got := list(env.Decks.Favorites); len(got) != 0 {
		t.Errorf("favorites should start empty: %v", got)
	}
	for range 2 {
		if rec := env.call(t, env.Decks.AddFavorite, http.MethodPut, b, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("add favorite: got %d", rec.Code)
		}
	}
	if got := list(env.Decks.Favorites); len(got) != 1 || got[0] != b.String() {
		t.Errorf("favorites: %v", got)
	}
	if rec := env.call(t, env.Decks.RemoveFavorite, http.MethodDelete, b, nil); rec.Code != http.StatusNoContent {
		t.Errorf("remove favorite: got %d", rec.Code)
	}
	if got := list(env.Decks.Favorites); len(got) != 0 {
		t.Errorf("favorites after remove: %v", got)
	}

	foreign, _ := env.Presentations.Create(uuid.New(), models.Document{})
	if rec := env.call(t, env.Decks.AddFavorite, http.MethodPut, foreign.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign favorite: got %d", rec.Code)
	}
}
