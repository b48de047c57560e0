// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"deckpress/internal/export"
	"deckpress/internal/middleware"
	"deckpress/internal/models"
	"deckpress/internal/persist"
	"deckpress/internal/slides"
	"deckpress/internal/storage"
	"deckpress/internal/templates"
	"deckpress/internal/workspace"
)

// maxImportBody caps uploaded decks. It matches the body the CSRF check
// may already have parsed.
const maxImportBody = middleware.MaxFormBody

// PresentationStore is the canonical presentation table.
type PresentationStore interface {
	Create(ownerID uuid.UUID, doc models.Document) (*models.Presentation, error)
	FindByID(id uuid.UUID) (*models.Presentation, error)
	ListByOwner(ownerID uuid.UUID) ([]models.PresentationSummary, error)
	Delete(id uuid.UUID) error
}

// RevisionStore keeps named snapshots taken on explicit save.
type RevisionStore interface {
	Create(rev *models.Revision) (*models.Revision, error)
	ListByPresentation(presentationID uuid.UUID) ([]*models.Revision, error)
	FindByID(id uuid.UUID) (*models.Revision, error)
}

// ArtifactCache caches finished exports.
type ArtifactCache interface {
	Get(ctx context.Context, key string) (*export.Artifact, bool)
	Set(ctx context.Context, key string, art *export.Artifact)
	InvalidateDocument(ctx context.Context, docHash string)
}

// DocumentBlobs is remote content-addressed storage.
type DocumentBlobs interface {
	Save(ctx context.Context, doc models.Document) (string, error)
	Load(ctx context.Context, hash string) (models.Document, error)
}

// DecksDeps collects the collaborators of the presentation API. Repo,
// Artifacts and Blobs are optional.
type DecksDeps struct {
	Presentations PresentationStore
	Revisions     RevisionStore
	Workspace     *workspace.Manager
	Catalog       *templates.Catalog
	Pipeline      *export.Pipeline
	Repo          *persist.Repo
	Artifacts     ArtifactCache
	Blobs         DocumentBlobs
	Logger        *slog.Logger
}

// Decks groups the presentation, slide, export and sharing handlers.
type Decks struct {
	DecksDeps
	now func() time.Time
}

// NewDecks creates the presentation handler group.
func NewDecks(deps DecksDeps) *Decks {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Decks{DecksDeps: deps, now: time.Now}
}

// deckState is the editor view of an open presentation.
type deckState struct {
	ID        uuid.UUID           `json:"id"`
	Slides    []models.Slide      `json:"slides"`
	Meta      models.Meta         `json:"meta"`
	Current   int                 `json:"current"`
	History   slides.HistoryState `json:"history"`
	Clipboard bool                `json:"clipboard"`
	Changed   bool                `json:"changed"`
}

func stateOf(id uuid.UUID, st *slides.Store, changed bool) deckState {
	return deckState{
		ID:        id,
		Slides:    st.Slides(),
		Meta:      st.Meta(),
		Current:   st.Current(),
		History:   st.HistoryState(),
		Clipboard: st.HasClipboard(),
		Changed:   changed,
	}
}

// open resolves the {id} parameter to a session owned by the caller.
// Presentations of other users are reported as missing.
func (d *Decks) open(w http.ResponseWriter, r *http.Request) (*workspace.Session, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid presentation id.")
		return nil, false
	}
	ws, err := d.Workspace.Open(r.Context(), id)
	if errors.Is(err, workspace.ErrNotFound) || (err == nil && ws.OwnerID != sess.UserID) {
		writeError(w, http.StatusNotFound, "Presentation not found.")
		return nil, false
	}
	if err != nil {
		internalError(w, "open presentation failed", err)
		return nil, false
	}
	return ws, true
}

// touch records id in the user's recent list.
func (d *Decks) touch(ctx context.Context, uid, id uuid.UUID) {
	if d.Repo == nil {
		return
	}
	if err := d.Repo.Touch(ctx, uid.String(), id.String()); err != nil {
		d.Logger.Warn("recent list update failed", "user", uid, "presentation", id, "error", err)
	}
}

// List returns the caller's presentations, most recently edited first.
func (d *Decks) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	items, err := d.Presentations.ListByOwner(sess.UserID)
	if err != nil {
		internalError(w, "list presentations failed", err)
		return
	}
	if items == nil {
		items = []models.PresentationSummary{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Create starts a presentation from a template.
func (d *Decks) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req struct {
		Title    string `json:"title"`
		Template string `json:"template"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if msg := validateTitle(req.Title); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if req.Template == "" {
		req.Template = "blank"
	}
	tpl, ok := d.Catalog.Get(req.Template)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "Unknown template.")
		return
	}
	if req.Title == "" {
		req.Title = "Untitled presentation"
	}

	d.create(w, r, sess.UserID, tpl.Document(req.Title, sess.DisplayName, d.now()))
}

func (d *Decks) create(w http.ResponseWriter, r *http.Request, owner uuid.UUID, doc models.Document) {
	p, err := d.Presentations.Create(owner, doc)
	if err != nil {
		internalError(w, "create presentation failed", err)
		return
	}
	ws := d.Workspace.Start(p.ID, owner, p.Document)
	d.touch(r.Context(), owner, p.ID)
	d.Logger.Info("presentation created", "presentation", p.ID, "owner", owner, "slides", len(doc.Slides))

	var out deckState
	ws.View(func(st *slides.Store) { out = stateOf(p.ID, st, true) })
	writeJSON(w, http.StatusCreated, out)
}

// Import creates a presentation from an uploaded JSON or PPTX file
// (multipart field "file") or from a raw JSON body.
func (d *Decks) Import(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

	var (
		doc models.Document
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			writeError(w, http.StatusBadRequest, "Upload a file in the \"file\" field.")
			return
		}
		defer file.Close()
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".json":
			doc, err = export.ImportJSON(file)
		case ".pptx":
			doc, err = export.ImportPPTXFrom(file, header.Filename)
		default:
			writeError(w, http.StatusUnsupportedMediaType, "Only .json and .pptx files can be imported.")
			return
		}
	} else {
		doc, err = export.ImportJSON(r.Body)
	}
	if err != nil {
		var (
			vErr     *export.ValidationError
			tooLarge *http.MaxBytesError
		)
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large.")
		case errors.As(err, &vErr), errors.Is(err, export.ErrEmptyInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			internalError(w, "import failed", err)
		}
		return
	}
	if msg := validateMeta(doc.Meta); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	now := d.now().UTC()
	if doc.Meta.CreatedAt.IsZero() {
		doc.Meta.CreatedAt = now
	}
	doc.Meta.UpdatedAt = now
	d.create(w, r, sess.UserID, doc)
}

// Get returns the editor state of a presentation.
func (d *Decks) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	d.touch(r.Context(), ws.OwnerID, ws.ID)
	var out deckState
	ws.View(func(st *slides.Store) { out = stateOf(ws.ID, st, false) })
	writeJSON(w, http.StatusOK, out)
}

// Delete removes a presentation and drops it from memory and the
// caller's lists.
func (d *Decks) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	doc := ws.Document()
	if err := d.Presentations.Delete(ws.ID); err != nil {
		internalError(w, "delete presentation failed", err)
		return
	}
	d.Workspace.Evict(ws.ID)
	if d.Artifacts != nil {
		if hash, _, err := storage.Hash(doc); err == nil {
			d.Artifacts.InvalidateDocument(r.Context(), hash)
		}
	}
	if d.Repo != nil {
		ctx := r.Context()
		if err := d.Repo.DeleteDocument(ctx, ws.ID.String()); err != nil {
			d.Logger.Warn("mirror delete failed", "presentation", ws.ID, "error", err)
		}
		if err := d.Repo.Forget(ctx, ws.OwnerID.String(), ws.ID.String()); err != nil {
			d.Logger.Warn("list cleanup failed", "presentation", ws.ID, "error", err)
		}
	}
	d.Logger.Info("presentation deleted", "presentation", ws.ID)
	w.WriteHeader(http.StatusNoContent)
}

// metaPatch is a partial meta update.
type metaPatch struct {
	Title       *string              `json:"title"`
	Author      *string              `json:"author"`
	SlideSize   *string              `json:"slideSize"`
	ThemePreset *string              `json:"themePreset"`
	Header      *models.HeaderFooter `json:"header"`
	Footer      *models.HeaderFooter `json:"footer"`
}

func (p metaPatch) apply(m models.Meta) models.Meta {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		m.Author = *p.Author
	}
	if p.SlideSize != nil {
		m.SlideSize = *p.SlideSize
	}
	if p.ThemePreset != nil {
		m.ThemePreset = *p.ThemePreset
	}
	if p.Header != nil {
		m.Header = *p.Header
	}
	if p.Footer != nil {
		m.Footer = *p.Footer
	}
	return m
}

// UpdateMeta patches the document meta. Meta edits are not undoable.
func (d *Decks) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	ws, ok := d.open(w, r)
	if !ok {
		return
	}
	var patch metaPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		msg string
		out deckState
	)
	ws.Do(func(st *slides.Store) {
		next := patch.apply(st.Meta())
		if msg = validateMeta(next); msg != "" {
			return
		}
		st.SetMeta(next)
		out = stateOf(ws.ID, st, true)
	})
	if msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Templates lists the starter templates.
func (d *Decks) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.Catalog.List())
}
