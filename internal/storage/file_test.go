package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "book"), logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseSlotStore(t, store)

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreKeysStayInDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	tests := []string{"../escape", "a/b", `c\d`, ""}
	for _, key := range tests {
		p := store.Path(key)
		if filepath.Dir(p) != dir {
			t.Errorf("key %q maps outside the store: %s", key, p)
		}
	}
}

func TestFileStoreWatch(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, "recipes", func() { changes.Add(1) })
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := store.Set(ctx, "recipes", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "unrelated", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for changes.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if changes.Load() == 0 {
		t.Fatal("no change notification for the watched slot")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
