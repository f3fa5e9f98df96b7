package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.SlotStore = (*FileStore)(nil)

// FileStore keeps each slot in its own JSON file under a directory, the
// terminal equivalent of browser local storage. Writes go through a temp
// file and rename so a crash never leaves a half-written slot.
type FileStore struct {
	dir string
	log *logger.Logger
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Dir returns the directory holding the slot files.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Get reads the slot file.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("slot file missing: %s", s.Path(key))
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the slot file.
func (s *FileStore) Set(ctx context.Context, key string, payload []byte) error {
	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, "."+sanitizeKey(key)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	s.log.Debug("wrote %s (%d bytes)", path, len(payload))
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// sanitizeKey keeps slot names inside the store directory.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	key = r.Replace(key)
	if key == "" {
		return "_"
	}
	return key
}
