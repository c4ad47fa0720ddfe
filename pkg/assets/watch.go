package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Manifest whenever its file changes on disk.
type Watcher struct {
	path     string
	manifest *Manifest
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	// onReload is called after every reload attempt. Tests use it to
	// synchronize.
	onReload func(error)
}

// NewWatcher starts watching the directory of path. The directory is watched
// rather than the file so that editors and build tools that replace the file
// atomically are still picked up.
func NewWatcher(path string, m *Manifest, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("assets: create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("assets: watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		manifest: m,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run processes file events until ctx is canceled. A manifest that fails to
// parse is logged and the previous mapping stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("manifest watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		w.logger.Warn("manifest reload failed",
			slog.String("path", w.path),
			slog.Any("error", err))
	} else {
		w.manifest.Replace(next)
		w.logger.Info("manifest reloaded",
			slog.String("path", w.path),
			slog.Int("entries", next.Len()))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}
