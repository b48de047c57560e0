// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// artifact.go caches exported files in Valkey. Entries are keyed by the
// content hash of the exported document, so an edit produces a new key and
// stale artifacts simply expire.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"deckpress/internal/export"
)

const (
	// artifactKeyPrefix is the Valkey key prefix for cached exports.
	artifactKeyPrefix = "export:"

	// DefaultArtifactTTL is how long an exported file stays cached.
	DefaultArtifactTTL = 10 * time.Minute
)

// ArtifactCache stores export results in Valkey.
type ArtifactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArtifactCache creates an artifact cache backed by the given Valkey client.
func NewArtifactCache(client *redis.Client, ttl time.Duration) *ArtifactCache {
	if ttl == 0 {
		ttl = DefaultArtifactTTL
	}
	return &ArtifactCache{client: client, ttl: ttl}
}

// ArtifactKey returns the cache key for one export of a document.
func ArtifactKey(docHash string, format export.Format, filename string) string {
	return docHash + ":" + string(format) + ":" + filename
}

type cachedArtifact struct {
	Filename    string        `json:"filename"`
	ContentType string        `json:"contentType"`
	Data        []byte        `json:"data"`
	Format      export.Format `json:"format"`
	Pages       int           `json:"pages,omitempty"`
}

// Get returns a cached artifact. Misses and Valkey errors both report false.
func (ac *ArtifactCache) Get(ctx context.Context, key string) (*export.Artifact, bool) {
	val, err := ac.client.Get(ctx, artifactKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("artifact cache get error", "key", key, "error", err)
		return nil, false
	}
	var c cachedArtifact
	if err := json.Unmarshal(val, &c); err != nil {
		slog.Warn("artifact cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("artifact cache hit", "key", key)
	return &export.Artifact{
		Filename:    c.Filename,
		ContentType: c.ContentType,
		Data:        c.Data,
		Format:      c.Format,
		Pages:       c.Pages,
	}, true
}

// Set stores an artifact with the configured TTL. JSON fallbacks are not
// cached so the requested format is retried on the next request.
func (ac *ArtifactCache) Set(ctx context.Context, key string, art *export.Artifact) {
	if art == nil || art.FallbackFrom != "" {
		return
	}
	val, err := json.Marshal(cachedArtifact{
		Filename:    art.Filename,
		ContentType: art.ContentType,
		Data:        art.Data,
		Format:      art.Format,
		Pages:       art.Pages,
	})
	if err != nil {
		slog.Warn("artifact cache encode error", "key", key, "error", err)
		return
	}
	if err := ac.client.Set(ctx, artifactKeyPrefix+key, val, ac.ttl).Err(); err != nil {
		slog.Warn("artifact cache set error", "key", key, "error", err)
	}
}

// InvalidateDocument removes every cached export of a document hash.
func (ac *ArtifactCache) InvalidateDocument(ctx context.Context, docHash string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := ac.client.Scan(ctx, cursor, artifactKeyPrefix+docHash+":*", 100).Result()
		if err != nil {
			slog.Warn("artifact cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ac.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("artifact cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("artifact cache invalidated", "hash", docHash, "deleted", deleted)
	}
}
