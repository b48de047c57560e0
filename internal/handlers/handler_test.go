// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure. Presentation
// handlers run against in-memory fakes; the auth flow needs PostgreSQL and
// Valkey and is skipped when those are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"deckpress/internal/database"
	"deckpress/internal/export"
	"deckpress/internal/kv"
	"deckpress/internal/middleware"
	"deckpress/internal/models"
	"deckpress/internal/persist"
	"deckpress/internal/session"
	"deckpress/internal/storage"
	"deckpress/internal/templates"
	"deckpress/internal/workspace"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "deckpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "deckpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// fakePresentations is an in-memory PresentationStore that also serves
// as the workspace DocumentStore.
type fakePresentations struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Presentation
}

func newFakePresentations() *fakePresentations {
	return &fakePresentations{items: map[uuid.UUID]*models.Presentation{}}
}

func (f *fakePresentations) Create(ownerID uuid.UUID, doc models.Document) (*models.Presentation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	p := &models.Presentation{ID: uuid.New(), OwnerID: ownerID, Title: doc.Meta.Title,
		Document: doc.Clone(), CreatedAt: now, UpdatedAt: now}
	f.items[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakePresentations) FindByID(id uuid.UUID) (*models.Presentation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Document = p.Document.Clone()
	return &cp, nil
}

func (f *fakePresentations) ListByOwner(ownerID uuid.UUID) ([]models.PresentationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PresentationSummary
	for _, p := range f.items {
		if p.OwnerID == ownerID {
			out = append(out, models.PresentationSummary{ID: p.ID, Title: p.Title,
				SlideCount: len(p.Document.Slides), UpdatedAt: p.UpdatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakePresentations) UpdateDocument(id uuid.UUID, doc models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Document = doc.Clone()
	p.Title = doc.Meta.Title
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakePresentations) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

// fakeRevisions is an in-memory RevisionStore.
type fakeRevisions struct {
	mu   sync.Mutex
	revs []*models.Revision
}

func (f *fakeRevisions) Create(rev *models.Revision) (*models.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rev
	cp.ID = uuid.New()
	cp.Title = rev.Document.Meta.Title
	cp.Document = rev.Document.Clone()
	cp.CreatedAt = time.Now()
	f.revs = append(f.revs, &cp)
	return &cp, nil
}

func (f *fakeRevisions) ListByPresentation(id uuid.UUID) ([]*models.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Revision
	for i := len(f.revs) - 1; i >= 0; i-- {
		if f.revs[i].PresentationID == id {
			out = append(out, f.revs[i])
		}
	}
	return out, nil
}

func (f *fakeRevisions) FindByID(id uuid.UUID) (*models.Revision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.revs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

// fakeArtifacts is an in-memory ArtifactCache.
type fakeArtifacts struct {
	mu   sync.Mutex
	data map[string]*export.Artifact
	sets int
}

func (f *fakeArtifacts) Get(_ context.Context, key string) (*export.Artifact, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.data[key]
	return a, ok
}

func (f *fakeArtifacts) Set(_ context.Context, key string, art *export.Artifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if art.FallbackFrom != "" {
		return
	}
	f.data[key] = art
	f.sets++
}

func (f *fakeArtifacts) InvalidateDocument(_ context.Context, docHash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.data {
		if strings.HasPrefix(key, docHash+":") {
			delete(f.data, key)
		}
	}
}

// fakeBlobs is an in-memory DocumentBlobs keyed by content hash.
type fakeBlobs struct {
	mu   sync.Mutex
	docs map[string]models.Document
}

func (f *fakeBlobs) Save(_ context.Context, doc models.Document) (string, error) {
	hash, _, err := storage.Hash(doc)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[hash] = doc.Clone()
	return hash, nil
}

func (f *fakeBlobs) Load(_ context.Context, hash string) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(hash) != 64 {
		return models.Document{}, storage.ErrInvalidHash
	}
	doc, ok := f.docs[hash]
	if !ok {
		return models.Document{}, storage.ErrNotFound
	}
	return doc, nil
}

// decksEnv wires Decks to fakes.
type decksEnv struct {
	Presentations *fakePresentations
	Revisions     *fakeRevisions
	Artifacts     *fakeArtifacts
	Blobs         *fakeBlobs
	Repo          *persist.Repo
	Workspace     *workspace.Manager
	Decks         *Decks
	User          *session.Data
}

func newDecksEnv(t *testing.T) *decksEnv {
	t.Helper()

	catalog, err := templates.Load()
	if err != nil {
		t.Fatalf("templates.Load: %v", err)
	}
	pres := newFakePresentations()
	repo := persist.New(kv.NewMemory())
	ws := workspace.NewManager(&workspace.StoreBackend{Presentations: pres, Repo: repo, Logger: quiet}, 50, quiet)

	env := &decksEnv{
		Presentations: pres,
		Revisions:     &fakeRevisions{},
		Artifacts:     &fakeArtifacts{data: map[string]*export.Artifact{}},
		Blobs:         &fakeBlobs{docs: map[string]models.Document{}},
		Repo:          repo,
		Workspace:     ws,
		User:          testSession(uuid.New(), "ana@example.com", true),
	}
	env.Decks = NewDecks(DecksDeps{
		Presentations: pres,
		Revisions:     env.Revisions,
		Workspace:     ws,
		Catalog:       catalog,
		Pipeline:      export.NewPipeline(export.DefaultRegistry(nil, quiet), quiet),
		Repo:          repo,
		Artifacts:     env.Artifacts,
		Blobs:         env.Blobs,
		Logger:        quiet,
	})
	return env
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email string, otpVerified bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		OTPVerified: otpVerified,
	}
}

// newRequest builds a request with a JSON body, chi URL params given as
// key/value pairs, and the session attached.
func newRequest(t *testing.T, method, target string, body any, sess *session.Data, params ...string) *http.Request {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if sess != nil {
		ctx = ctxWithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

// serve runs h and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// decodeState parses a deckState response.
func decodeState(t *testing.T, rec *httptest.ResponseRecorder) deckState {
	t.Helper()
	var st deckState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v\n%s", err, rec.Body.String())
	}
	return st
}

// createDeck creates a presentation from a template and returns its state.
func (e *decksEnv) createDeck(t *testing.T, title, template string) deckState {
	t.Helper()
	rec := serve(e.Decks.Create, newRequest(t, http.MethodPost, "/api/presentations",
		map[string]string{"title": title, "template": template}, e.User))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeState(t, rec)
}

// call invokes a presentation-scoped handler for id.
func (e *decksEnv) call(t *testing.T, h http.HandlerFunc, method string, id uuid.UUID, body any, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	params = append([]string{"id", id.String()}, params...)
	return serve(h, newRequest(t, method, "/api/presentations/"+id.String(), body, e.User, params...))
}

var errNoSession = errors.New("no session cookie in response")

// sessionFrom loads the session referenced by the cookie set in rec.
func sessionFrom(t *testing.T, store *session.Store, rec *httptest.ResponseRecorder) (*session.Data, *http.Cookie, error) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != session.CookieName {
			continue
		}
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		data, err := store.Get(context.Background(), r)
		return data, c, err
	}
	return nil, nil, errNoSession
}
