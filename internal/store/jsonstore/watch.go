package jsonstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/idilsaglam/mornify/internal/logx"
	"github.com/idilsaglam/mornify/internal/model"
)

const watchDebounce = 250 * time.Millisecond

// Watch reloads the routine whenever its file changes on disk and hands the
// result to onChange. Editors often emit several events per save, so
// reloads are debounced. A file that fails to parse is logged and skipped.
// Watch blocks until ctx is done.
func (s *RoutineStore) Watch(ctx context.Context, log logx.Logger, onChange func(model.Routine)) error {
	if log.IsZero() {
		log = logx.Nop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors that save via rename replace the inode.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		tasks, err := s.Load()
		if err != nil {
			log.Warn("routine reload failed; keeping current routine", logx.String("path", s.path), logx.Err(err))
			return
		}
		log.Info("routine file changed", logx.String("path", s.path), logx.Int("tasks", len(tasks)))
		onChange(tasks)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reload)
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("routine watcher error", logx.Err(err))
		}
	}
}
