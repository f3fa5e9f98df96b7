package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hammamikhairi/recipebook/internal/logger"
)

const watchDebounce = 200 * time.Millisecond

// Watcher is implemented by local stores that can report changes made by
// other processes.
type Watcher interface {
	Watch(ctx context.Context, key string, onChange func()) error
}

var (
	_ Watcher = (*FileStore)(nil)
	_ Watcher = (*SQLiteStore)(nil)
)

// Watch calls onChange whenever the slot file for key is replaced on disk.
// The directory is watched rather than the file because Set swaps the file
// via rename. Bursts of events are debounced. Blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context, key string, onChange func()) error {
	return watchFile(ctx, s.Path(key), onChange, s.log)
}

// Watch calls onChange whenever the database file is written. The key is
// ignored; any committed write may have touched it.
func (s *SQLiteStore) Watch(ctx context.Context, _ string, onChange func()) error {
	return watchFile(ctx, s.path, onChange, s.log)
}

func watchFile(ctx context.Context, path string, onChange func(), log *logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	base := filepath.Base(path)

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("watch: %s %s", event.Op, event.Name)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error: %v", err)
		}
	}
}
