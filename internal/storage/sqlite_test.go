package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "book.db")
	log := logger.New(logger.LevelOff, nil)

	store, err := NewSQLiteStore(ctx, path, log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseSlotStore(t, store)

	var n int
	if err := store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one row after overwrite, got %d", n)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and read back.
	reopened, err := NewSQLiteStore(ctx, path, log)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "recipes")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}
