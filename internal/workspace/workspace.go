// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package workspace keeps the open presentations of a server in memory.
// Each open presentation is a Session owning one slides.Store behind a
// mutex; a background autosave loop writes dirty sessions to a Backend,
// last write wins.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"deckpress/internal/models"
	"deckpress/internal/slides"
)

// ErrNotFound is returned by Open when the backend has no such presentation.
var ErrNotFound = errors.New("workspace: presentation not found")

// State is what a Backend loads and saves for one presentation.
type State struct {
	OwnerID  uuid.UUID
	Document models.Document
	History  *slides.Backup // nil when no undo history was persisted
}

// Backend loads and persists presentation state.
type Backend interface {
	Load(ctx context.Context, id uuid.UUID) (*State, error)
	Save(ctx context.Context, id uuid.UUID, st State) error
}

// Session is one open presentation. All access to its store goes through
// Do or View, which serialise concurrent requests.
type Session struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	mu         sync.Mutex
	store      *slides.Store
	dirty      bool
	version    uint64
	lastAccess time.Time
}

// Do runs fn with exclusive access to the store. Changes made by fn mark
// the session dirty for the next autosave.
func (s *Session) Do(fn func(st *slides.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	fn(s.store)
}

// View runs fn with exclusive access to the store for reading.
func (s *Session) View(fn func(st *slides.Store)) {
	s.Do(fn)
}

// Document returns a deep copy of the current slides and meta.
func (s *Session) Document() models.Document {
	var doc models.Document
	s.View(func(st *slides.Store) { doc = st.Document() })
	return doc
}

// Dirty reports whether the session has unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess.Before(cutoff)
}

func (s *Session) markDirty(slides.Change) {
	// Called from inside Do, with s.mu held.
	s.dirty = true
	s.version++
}

// Manager owns the open sessions.
type Manager struct {
	backend      Backend
	historyLimit int
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a manager. historyLimit caps undo snapshots per session.
func NewManager(backend Backend, historyLimit int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend:      backend,
		historyLimit: historyLimit,
		logger:       logger,
		sessions:     make(map[uuid.UUID]*Session),
	}
}

// Open returns the session for id, loading it from the backend if it is
// not in memory yet. The returned session counts as accessed, so idle
// eviction will not drop it from under the caller.
func (m *Manager) Open(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.touch()
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	st, err := m.backend.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	if st == nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have opened it while we were loading.
	if s, ok := m.sessions[id]; ok {
		s.touch()
		return s, nil
	}
	s := m.newSession(id, *st)
	m.sessions[id] = s
	return s, nil
}

// Start registers a brand new presentation as an open, dirty session.
func (m *Manager) Start(id uuid.UUID, owner uuid.UUID, doc models.Document) *Session {
	s := m.newSession(id, State{OwnerID: owner, Document: doc})
	s.dirty = true
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) newSession(id uuid.UUID, st State) *Session {
	s := &Session{ID: id, OwnerID: st.OwnerID, lastAccess: time.Now()}
	s.store = slides.New(st.Document,
		slides.WithHistoryLimit(m.historyLimit),
		slides.WithOnChange(s.markDirty),
	)
	if st.History != nil {
		if err := s.store.RestoreHistory(*st.History); err != nil {
			m.logger.Warn("discarding stored undo history", "presentation", id, "error", err)
		}
	}
	s.dirty = false
	s.version = 0
	return s
}

// Evict drops a session without saving it, e.g. after the presentation
// was deleted.
func (m *Manager) Evict(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Save writes one session if it is dirty. A failed write leaves the
// session dirty so the next autosave retries it.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	// A pending draft is committed so the saved history ends on the saved
	// document.
	s.store.Commit()
	backup := s.store.HistoryBackup()
	st := State{OwnerID: s.OwnerID, Document: s.store.Document(), History: &backup}
	version := s.version
	s.mu.Unlock()

	if err := m.backend.Save(ctx, s.ID, st); err != nil {
		return err
	}

	s.mu.Lock()
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// SaveAll writes every dirty session. Failures are logged and swallowed;
// the in-memory state stands. Returns the number of sessions written.
func (m *Manager) SaveAll(ctx context.Context) int {
	saved := 0
	for _, s := range m.snapshot() {
		if !s.Dirty() {
			continue
		}
		if err := m.Save(ctx, s); err != nil {
			m.logger.Warn("autosave failed", "presentation", s.ID, "error", err)
			continue
		}
		saved++
	}
	return saved
}

// EvictIdle saves and drops sessions not touched for longer than maxIdle.
// Sessions that fail to save stay open.
func (m *Manager) EvictIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for _, s := range m.snapshot() {
		if !s.idleSince(cutoff) {
			continue
		}
		if err := m.Save(ctx, s); err != nil {
			m.logger.Warn("idle session not evicted, save failed", "presentation", s.ID, "error", err)
			continue
		}
		m.mu.Lock()
		// Open stamps the session under m.mu, so one handed out during the
		// save is no longer idle here.
		if cur, ok := m.sessions[s.ID]; ok && cur == s && !s.Dirty() && s.idleSince(cutoff) {
			delete(m.sessions, s.ID)
			evicted++
		}
		m.mu.Unlock()
	}
	return evicted
}

// Run autosaves every interval until ctx is cancelled, then flushes once
// more with a short deadline. Sessions idle for ten intervals are evicted.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			n := m.SaveAll(flushCtx)
			cancel()
			m.logger.Info("autosave stopped", "flushed", n)
			return
		case <-ticker.C:
			if n := m.SaveAll(ctx); n > 0 {
				m.logger.Debug("autosave", "saved", n)
			}
			m.EvictIdle(ctx, 10*interval)
		}
	}
}
