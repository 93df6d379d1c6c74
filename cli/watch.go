package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay absorbs the several events editors emit for one save.
const debounceDelay = 100 * time.Millisecond

// watchJournals runs fn, then runs it again whenever one of files changes,
// until ctx is cancelled. Failures of fn are printed and do not stop the loop.
func watchJournals(ctx context.Context, files []string, stderr io.Writer, fn func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, file := range files {
		if err := watcher.Add(file); err != nil {
			return fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}

	run := func() {
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(stderr, NewErrorRenderer().Render(err))
		}
		printInfof(stderr, "Watching %d journal(s) for changes", len(files))
	}
	run()

	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
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
			// Remove and Rename come with atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			// A file replaced by rename drops its watch.
			for _, file := range files {
				_ = watcher.Add(file)
			}
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}
