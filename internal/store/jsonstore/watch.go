package jsonstore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses the create+write+rename burst of one Set into a single signal.
const debounceDelay = 100 * time.Millisecond

// Watch signals on the returned channel whenever the file behind key is
// created, written, removed or renamed by someone else. Changes that leave the
// file as this Store's own last Set or Delete left it are not signalled. The directory is watched rather than
// the file so that atomic renames and deletions are seen. The channel is
// closed when ctx is done or the watcher fails.
func (s *Store) Watch(ctx context.Context, key string, logger *slog.Logger) (<-chan struct{}, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	target := filepath.Clean(s.Path(key))
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer fsw.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceDelay)
				} else {
					timer.Reset(debounceDelay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if s.isOwn(key) {
					logger.Debug("skipping own write", slog.String("key", key))
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("slot watch error", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
	}()

	logger.Debug("watching slot", slog.String("key", key), slog.String("path", target))
	return out, nil
}
