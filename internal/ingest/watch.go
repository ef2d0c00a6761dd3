package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces bursts of file events. Samplers append to several
// chain files in quick succession; re-reading once per burst is enough.
const settleDelay = 500 * time.Millisecond

// Watch monitors a run directory and calls onChange after its contents
// settle following a write. It runs until ctx is cancelled.
//
// onChange is called from the watch goroutine; it should hand off long work.
func Watch(ctx context.Context, runID, dir string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("ingest: watching run directory", "run", runID, "dir", dir)

	// The timer starts stopped; each relevant event re-arms it, so onChange
	// fires once per burst of writes.
	settle := time.NewTimer(settleDelay)
	if !settle.Stop() {
		<-settle.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Drain a pending expiry before Reset so one burst cannot fire
			// the callback twice.
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(settleDelay)

		case <-settle.C:
			slog.Debug("ingest: run directory changed", "run", runID)
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("ingest: watcher error", "run", runID, "err", err)
		}
	}
}
