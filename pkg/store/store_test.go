package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/intentgraph/pkg/config"
)

// exercise runs the behavior every Store must share.
func exercise(t *testing.T, s Store, prefix string) {
	t.Helper()
	ctx := context.Background()
	key := prefix + ":k"
	defer s.Delete(ctx, key)

	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := s.Set(ctx, key, []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok || !bytes.Equal(got, []byte("one")) {
		t.Fatalf("Get() = %q, %v, %v, want one", got, ok, err)
	}
	if err := s.Set(ctx, key, []byte("two")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got, _, _ := s.Get(ctx, key); !bytes.Equal(got, []byte("two")) {
		t.Errorf("Get() after overwrite = %q, want two", got)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, key); ok {
		t.Error("key still present after Delete")
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(), "mem")
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	s.Set(ctx, "k", buf)
	buf[0] = 'x'
	got, _, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Errorf("Set() = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("NullStore returned data")
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, s, "file")
}

func TestFileStoreCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	path := s.path("k")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("Get(corrupt) error = nil")
	}
}

func TestFileStorePathLayout(t *testing.T) {
	s := &FileStore{dir: "/data"}
	h := Hash([]byte("alice:intent-tree"))
	want := filepath.Join("/data", h[:2], h[2:]+".json")
	if got := s.path("alice:intent-tree"); got != want {
		t.Errorf("path() = %q, want %q", got, want)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sub", "ig.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exercise(t, s, "sqlite")
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ig.db")
	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	s.Set(ctx, "k", []byte("persisted"))
	s.Close()

	s, err = NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, ok, _ := s.Get(ctx, "k"); !ok || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v", got, ok)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("INTENTGRAPH_REDIS_ADDR")
	if addr == "" {
		t.Skip("INTENTGRAPH_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	exercise(t, s, "intentgraph-test:"+t.Name())
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("INTENTGRAPH_MONGO_URI")
	if uri == "" {
		t.Skip("INTENTGRAPH_MONGO_URI not set")
	}
	s, err := NewMongoStore(context.Background(), config.MongoConfig{
		URI: uri, Database: "intentgraph_test", Collection: "blobs",
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer s.Close()
	exercise(t, s, t.Name())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendMemory, "*store.MemoryStore"},
		{config.BackendNull, "*store.NullStore"},
		{config.BackendFile, "*store.FileStore"},
		{config.BackendSQLite, "*store.SQLiteStore"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default().Store
			cfg.Backend = tt.backend
			cfg.File.Dir = filepath.Join(dir, "files")
			cfg.SQLite.Path = filepath.Join(dir, "ig.db")
			s, err := Open(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Open(%s): %v", tt.backend, err)
			}
			defer s.Close()
			if got := typeName(s); got != tt.want {
				t.Errorf("Open(%s) = %s, want %s", tt.backend, got, tt.want)
			}
		})
	}

	cfg := config.Default().Store
	cfg.Backend = "etcd"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("Open(etcd) error = nil")
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*store.MemoryStore"
	case *NullStore:
		return "*store.NullStore"
	case *FileStore:
		return "*store.FileStore"
	case *SQLiteStore:
		return "*store.SQLiteStore"
	}
	return "unknown"
}
