package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreGetSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "paytrack.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.GetItem(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}

	if err := s.SetItem(ctx, "k", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetItem(ctx, "k", `{"a":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := s.GetItem(ctx, "k")
	if err != nil || !ok || v != `{"a":2}` {
		t.Fatalf("unexpected get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paytrack.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	// Migrations must be a no-op on an existing database
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()

	if v, ok, _ := s.GetItem(ctx, "k"); !ok || v != "v" {
		t.Fatalf("value lost across reopen: %q ok=%v", v, ok)
	}
}
