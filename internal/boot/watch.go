package boot

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs the loader when the dashboard script changes on disk.
type Watcher struct {
	l        *slog.Logger
	loader   *Loader
	debounce time.Duration
}

func NewWatcher(loader *Loader) *Watcher {
	return &Watcher{
		l:        slog.With(slog.String("component", "boot-watcher")),
		loader:   loader,
		debounce: 500 * time.Millisecond,
	}
}

func (w *Watcher) log() *slog.Logger {
	if w.l != nil {
		return w.l
	}
	return slog.With(slog.String("component", "boot-watcher"))
}

// Run watches the script search directories until the context is canceled.
// A burst of write events triggers a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range w.loader.Paths() {
		if err := fw.Add(dir); err != nil {
			// the script directory may appear later
			w.log().Warn("watch failed", slog.String("dir", dir), slog.Any("err", err))
		}
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != ScriptFile {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.log().Info("dashboard script changed, reloading")
			w.loader.Load()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log().Warn("watch error", slog.Any("err", err))
		}
	}
}
