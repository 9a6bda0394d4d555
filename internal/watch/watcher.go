package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"blade-trans-sync/internal/filewalker"
	"blade-trans-sync/internal/syncer"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// TemplateSyncer runs one synchronization pass for a template.
type TemplateSyncer interface {
	SyncTemplate(ctx context.Context, templatePath string) (syncer.Result, error)
}

// Watcher synchronizes translation files whenever a Blade template under a
// directory tree is saved. Bursts of events for one template are collapsed
// into a single pass after the debounce delay.
type Watcher struct {
	syncer   TemplateSyncer
	walker   *filewalker.Walker
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	due    chan string
}

// New creates a Watcher.
func New(s TemplateSyncer, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = time.Millisecond
	}
	return &Watcher{
		syncer:   s,
		walker:   filewalker.NewWalker(),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		due:      make(chan string),
	}
}

// Run watches root until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}

	if !isDir(root) {
		return fmt.Errorf("root is not a directory: %s", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, root); err != nil {
		return err
	}
	log.Info().Str("root", root).Msg("Watching templates")

	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("fsnotify error")

		case path := <-w.due:
			res, err := w.syncer.SyncTemplate(ctx, path)
			if err != nil {
				log.Error().Err(err).Str("template", path).Msg("Synchronization failed")
				continue
			}
			syncer.LogResult(res)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) && isDir(ev.Name) {
		if err := w.addTree(fsw, ev.Name); err != nil {
			log.Warn().Err(err).Str("path", ev.Name).Msg("Failed to watch new directory")
		}
		return
	}

	if !filewalker.IsTemplate(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
		w.schedule(ctx, ev.Name)
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		select {
		case w.due <- path:
		case <-ctx.Done():
		}
	})
	w.timers[path] = t
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// addTree watches dir and every directory below it that the walker does not skip.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.walker.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
