package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
)

// testValkey returns a Valkey-backed store on DB 15, skipping when no
// server is reachable.
func testValkey(t *testing.T) Store {
	t.Helper()
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	ns := "kvtest:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, ns+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return NewValkey(client, ns)
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
		"valkey": testValkey,
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			if _, err := s.Get(ctx, "doc:missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
			}

			for k, v := range map[string]string{
				"doc:b": "two", "doc:a": "one", "history:a": "h", "DOC:x": "upper",
			} {
				if err := s.Set(ctx, k, []byte(v)); err != nil {
					t.Fatalf("Set %s: %v", k, err)
				}
			}
			if err := s.Set(ctx, "doc:a", []byte("one-v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := s.Get(ctx, "doc:a")
			if err != nil || string(got) != "one-v2" {
				t.Errorf("Get doc:a = %q, %v; want one-v2", got, err)
			}

			keys, err := s.Keys(ctx, "doc:")
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if want := []string{"doc:a", "doc:b"}; !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys = %v, want %v", keys, want)
			}

			if err := s.Delete(ctx, "doc:a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "doc:a"); !errors.Is(err, ErrNotFound) {
				t.Errorf("after delete: err = %v", err)
			}
			if err := s.Delete(ctx, "doc:a"); err != nil {
				t.Errorf("deleting a missing key: %v", err)
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	v := []byte("abc")
	m.Set(ctx, "k", v)
	v[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller slice: %q", got)
	}
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, "doc:1", []byte(`{"slides":[]}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "doc:1")
	if err != nil || string(got) != `{"slides":[]}` {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}
