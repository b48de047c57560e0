// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package persist maps documents, undo histories and per-user id lists
// onto a kv.Store.
//
// Keys:
//
//	doc:{id}               {slides, meta}
//	history:{id}           {index, snapshots}
//	user:{uid}:recent      ["id", ...] most recent first
//	user:{uid}:favorites   ["id", ...]
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"deckpress/internal/kv"
	"deckpress/internal/models"
	"deckpress/internal/slides"
)

// MaxRecent bounds the recent-documents list.
const MaxRecent = 20

const (
	docPrefix     = "doc:"
	historyPrefix = "history:"
)

// ErrNotFound is returned when a document or history does not exist.
var ErrNotFound = kv.ErrNotFound

// StorageError wraps a backend failure. Callers on the autosave path log
// it and keep the in-memory state.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Repo reads and writes documents through a kv.Store.
type Repo struct {
	kv kv.Store
}

// New creates a repository on store.
func New(store kv.Store) *Repo {
	return &Repo{kv: store}
}

// SaveDocument writes doc under id, replacing any previous value.
func (r *Repo) SaveDocument(ctx context.Context, id string, doc models.Document) error {
	return r.put(ctx, docPrefix+id, doc)
}

// LoadDocument reads the document stored under id.
func (r *Repo) LoadDocument(ctx context.Context, id string) (models.Document, error) {
	var doc models.Document
	if err := r.get(ctx, docPrefix+id, &doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// DeleteDocument removes the document and its history.
func (r *Repo) DeleteDocument(ctx context.Context, id string) error {
	for _, key := range []string{docPrefix + id, historyPrefix + id} {
		if err := r.kv.Delete(ctx, key); err != nil {
			return &StorageError{Op: "delete", Key: key, Err: err}
		}
	}
	return nil
}

// ListDocuments returns the ids of all stored documents, sorted.
func (r *Repo) ListDocuments(ctx context.Context) ([]string, error) {
	keys, err := r.kv.Keys(ctx, docPrefix)
	if err != nil {
		return nil, &StorageError{Op: "list", Key: docPrefix, Err: err}
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = strings.TrimPrefix(k, docPrefix)
	}
	return ids, nil
}

// SaveHistory writes the undo history of document id.
func (r *Repo) SaveHistory(ctx context.Context, id string, b slides.Backup) error {
	return r.put(ctx, historyPrefix+id, b)
}

// LoadHistory reads the undo history of document id.
func (r *Repo) LoadHistory(ctx context.Context, id string) (slides.Backup, error) {
	var b slides.Backup
	if err := r.get(ctx, historyPrefix+id, &b); err != nil {
		return slides.Backup{}, err
	}
	return b, nil
}

// Recent returns the documents uid opened most recently, newest first.
func (r *Repo) Recent(ctx context.Context, uid string) ([]string, error) {
	return r.list(ctx, recentKey(uid))
}

// Touch moves id to the front of uid's recent list.
func (r *Repo) Touch(ctx context.Context, uid, id string) error {
	key := recentKey(uid)
	ids, err := r.list(ctx, key)
	if err != nil {
		return err
	}
	ids = slices.DeleteFunc(ids, func(s string) bool { return s == id })
	ids = append([]string{id}, ids...)
	if len(ids) > MaxRecent {
		ids = ids[:MaxRecent]
	}
	return r.put(ctx, key, ids)
}

// Favorites returns uid's favourite documents in the order they were added.
func (r *Repo) Favorites(ctx context.Context, uid string) ([]string, error) {
	return r.list(ctx, favoritesKey(uid))
}

// AddFavorite appends id to uid's favourites. Adding twice is a no-op.
func (r *Repo) AddFavorite(ctx context.Context, uid, id string) error {
	key := favoritesKey(uid)
	ids, err := r.list(ctx, key)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return r.put(ctx, key, append(ids, id))
}

// RemoveFavorite drops id from uid's favourites.
func (r *Repo) RemoveFavorite(ctx context.Context, uid, id string) error {
	key := favoritesKey(uid)
	ids, err := r.list(ctx, key)
	if err != nil {
		return err
	}
	return r.put(ctx, key, slices.DeleteFunc(ids, func(s string) bool { return s == id }))
}

// Forget removes id from both of uid's lists.
func (r *Repo) Forget(ctx context.Context, uid, id string) error {
	for _, key := range []string{recentKey(uid), favoritesKey(uid)} {
		ids, err := r.list(ctx, key)
		if err != nil {
			return err
		}
		if err := r.put(ctx, key, slices.DeleteFunc(ids, func(s string) bool { return s == id })); err != nil {
			return err
		}
	}
	return nil
}

func recentKey(uid string) string    { return "user:" + uid + ":recent" }
func favoritesKey(uid string) string { return "user:" + uid + ":favorites" }

func (r *Repo) list(ctx context.Context, key string) ([]string, error) {
	var ids []string
	err := r.get(ctx, key, &ids)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *Repo) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (r *Repo) get(ctx context.Context, key string, v any) error {
	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return &StorageError{Op: "get", Key: key, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
