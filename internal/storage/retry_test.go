package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// flakyStore fails the first n calls of each kind with errFlaky.
type flakyStore struct {
	*MemoryStore
	failSets int
	failGets int
	sets     int
	gets     int
}

var errFlaky = errors.New("connection reset")

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets++
	if f.gets <= f.failGets {
		return nil, errFlaky
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, payload []byte) error {
	f.sets++
	if f.sets <= f.failSets {
		return errFlaky
	}
	return f.MemoryStore.Set(ctx, key, payload)
}

func newFastRetrying(inner domain.SlotStore, maxRetries uint64) *RetryingStore {
	s := NewRetryingStore(inner, time.Second, logger.New(logger.LevelOff, nil))
	s.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	return s
}

func TestRetryingStoreRecovers(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{MemoryStore: NewMemoryStore(logger.New(logger.LevelOff, nil)), failSets: 2, failGets: 1}
	store := newFastRetrying(inner, 5)

	if err := store.Set(ctx, "recipes", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if inner.sets != 3 {
		t.Fatalf("expected 3 set attempts, got %d", inner.sets)
	}

	got, err := store.Get(ctx, "recipes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestRetryingStoreGivesUp(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(logger.New(logger.LevelOff, nil)), failSets: 100}
	store := newFastRetrying(inner, 3)

	err := store.Set(context.Background(), "recipes", []byte(`[]`))
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected errFlaky, got %v", err)
	}
	if inner.sets != 4 {
		t.Fatalf("expected 1 try + 3 retries, got %d", inner.sets)
	}
}

func TestRetryingStoreNotFoundIsFinal(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(logger.New(logger.LevelOff, nil))}
	store := newFastRetrying(inner, 5)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if inner.gets != 1 {
		t.Fatalf("ErrNotFound was retried: %d attempts", inner.gets)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	log := logger.New(logger.LevelOff, nil)

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default is file", Options{Dir: t.TempDir()}, false},
		{"memory", Options{Driver: DriverMemory}, false},
		{"sqlite", Options{Driver: DriverSQLite, SQLitePath: t.TempDir() + "/book.db"}, false},
		{"s3 without bucket", Options{Driver: DriverS3}, true},
		{"unknown", Options{Driver: "floppy"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(ctx, tt.opts, log)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer store.Close()
			exerciseSlotStore(t, store)
		})
	}
}
