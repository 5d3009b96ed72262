package dictionary

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Sink persists a freshly loaded dictionary.
type Sink func(ctx context.Context, entries []Entry) error

// Invalidator drops a cached dictionary snapshot.
type Invalidator interface {
	Invalidate()
}

// Watcher re-imports a dictionary JSON file whenever it changes on disk.
type Watcher struct {
	path    string
	sink    Sink
	cache   Invalidator
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewWatcher prepares a watcher for path. The file's directory is watched so
// that editors replacing the file atomically are still noticed.
func NewWatcher(path string, sink Sink, cache Invalidator, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:    filepath.Clean(path),
		sink:    sink,
		cache:   cache,
		watcher: w,
		logger:  logger,
	}, nil
}

// Reload loads the file, hands the entries to the sink and invalidates the
// cache. It returns the number of entries loaded.
func (w *Watcher) Reload(ctx context.Context) (int, error) {
	entries, err := LoadJSON(w.path)
	if err != nil {
		return 0, err
	}
	if err := w.sink(ctx, entries); err != nil {
		return 0, err
	}
	if w.cache != nil {
		w.cache.Invalidate()
	}
	return len(entries), nil
}

// Start begins watching in the background until ctx is done or Close is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				n, err := w.Reload(ctx)
				if err != nil {
					w.logger.Warn("dictionary reload failed", zap.String("path", w.path), zap.Error(err))
					continue
				}
				w.logger.Info("dictionary reloaded", zap.String("path", w.path), zap.Int("entries", n))
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("dictionary watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
