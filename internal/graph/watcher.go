package graph

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StaleCallback is called after the cache has been marked stale by a
// watcher-observed database write.
type StaleCallback func()

// Watch starts an fsnotify watcher on the directory holding the SQLite
// database and marks the cache stale whenever the database file (or its
// WAL/SHM sidecars) is written by another process. Events are debounced so
// a burst of writes produces a single stale signal.
//
// The cache is not rebuilt here: the next query that calls EnsureFresh
// performs the reload synchronously.
func Watch(ctx context.Context, cache *Cache, dbPath string, logger *slog.Logger, cb StaleCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("db", abs))

	// Debounce timer for write bursts.
	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleStale := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	isDBFile := func(name string) bool {
		b := filepath.Base(name)
		return b == base || b == base+"-wal" || b == base+"-shm"
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			cache.MarkStale()
			logger.Debug("watcher: snapshot marked stale")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isDBFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Chmod-only events are ignored; filtered above.
			if strings.HasSuffix(ev.Name, "-shm") && ev.Op&fsnotify.Write == 0 {
				continue
			}
			scheduleStale()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
