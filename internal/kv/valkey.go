package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Valkey is a Store on a Valkey (Redis-compatible) server. All keys are
// stored under a namespace prefix.
type Valkey struct {
	client    *redis.Client
	namespace string
}

// NewValkey wraps client. namespace is prepended to every key, e.g. "kv:".
func NewValkey(client *redis.Client, namespace string) *Valkey {
	return &Valkey{client: client, namespace: namespace}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := v.client.Get(ctx, v.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return val, nil
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, v.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (v *Valkey) Delete(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, v.namespace+key).Err(); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Keys walks the keyspace with SCAN so large namespaces do not block the
// server.
func (v *Valkey) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := v.client.Scan(ctx, cursor, v.namespace+prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", prefix, err)
		}
		for _, k := range keys {
			out = append(out, k[len(v.namespace):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op; the client is owned by the caller.
func (v *Valkey) Close() error { return nil }
