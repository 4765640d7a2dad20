package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig describes an inbox: every immediate subdirectory of Root is one document.
type WatchConfig struct {
	Root        string
	InitialScan bool          // if true, emit existing document directories on start
	Debounce    time.Duration // quiet period after the last page write before a document is emitted
}

// StartWatcher emits a document directory once its pages stop changing for Debounce.
// Both channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		logger.Error("watcher start failed: no root provided")
		return nil, nil, errors.New("no root provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(root); err != nil {
		_ = w.Close()
		logger.Error("failed to watch root directory", "root", root, "error", err)
		return nil, nil, err
	}

	var existing []string
	entries, err := os.ReadDir(root)
	if err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	for _, e := range entries {
		if !e.IsDir() || IsHidden(e.Name()) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := w.Add(dir); err != nil {
			logger.Warn("failed to watch document directory", "dir", dir, "error", err)
			continue
		}
		if cfg.InitialScan && hasPages(dir) {
			existing = append(existing, dir)
		}
	}

	evCh := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		for _, dir := range existing {
			select {
			case evCh <- dir:
			case <-ctx.Done():
				return
			}
		}

		pending := map[string]time.Time{}
		ticker := time.NewTicker(cfg.Debounce / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				parent := filepath.Dir(e.Name)
				if parent == root {
					// a new document directory, possibly moved in with its pages
					if e.Has(fsnotify.Create) && isDir(e.Name) && !IsHidden(e.Name) {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("failed to watch document directory", "dir", e.Name, "error", err)
						}
						if hasPages(e.Name) {
							pending[e.Name] = time.Now()
						}
					}
					continue
				}
				if filepath.Dir(parent) == root && !IsHidden(e.Name) && AllowedExt(filepath.Ext(e.Name)) &&
					(e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename)) {
					pending[parent] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for dir, last := range pending {
					if now.Sub(last) < cfg.Debounce {
						continue
					}
					delete(pending, dir)
					select {
					case evCh <- dir:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func hasPages(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipAll
		}
		if !d.IsDir() && AllowedExt(filepath.Ext(path)) && !IsHidden(path) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
