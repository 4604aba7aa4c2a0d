package backend

import (
	"context"
	"path/filepath"
	"testing"

	"paytrack/internal/config"
	"paytrack/internal/storage"
	"paytrack/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Fatalf("unexpected result: %+v err=%v", cfg, err)
	}
}

func TestCreateStore(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateStore(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Fatalf("expected memory store, got %T", res.Store)
		}
		if res.Cleanup != nil {
			t.Fatal("memory store needs no cleanup")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		res, err := f.CreateStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		defer res.Cleanup()
		if _, ok := res.Store.(*storage.SQLiteStore); !ok {
			t.Fatalf("expected sqlite store, got %T", res.Store)
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		if _, err := f.CreateStore(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		if _, err := f.CreateStore(ctx, Config{Type: "sheets"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
