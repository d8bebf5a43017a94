// internal/schema/watcher.go
//
// Filesystem watcher for the schema directory.
//
// Context
// -------
// When the validator keeps compiled schemas in its cache, an edited schema
// file must not keep serving the stale compiled form.  Watcher subscribes
// to fsnotify events for the schema directory (non-recursive plus every
// sub-directory found at start-up) and invokes a callback, debounced, after
// any create, write, remove, or rename of a schema file.  The callback is
// normally `(*validator.Validator).Purge`.
//
// Notes
// -----
//   • Only files with a schema extension (.json, .yaml, .yml) trigger the
//     callback; editor swap files and the like are ignored.
//   • Directories created after start-up are added on the fly.
//   • Run blocks until ctx is cancelled.
package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period between the last event and the
// callback.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes under a schema directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher prepares a watcher for dir.  onChange must not block for long.
func NewWatcher(dir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if dir == "" {
		return nil, ErrNoSchemaPath
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{dir: dir, debounce: debounce, onChange: onChange, fsw: fsw}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	zap.S().Infow("schema watcher started", "dir", w.dir, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			zap.S().Infow("schema watcher stopped", "dir", w.dir)
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("schema watcher: events channel closed")
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("schema watcher: errors channel closed")
			}
			zap.S().Errorw("schema watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				zap.S().Warnw("schema watcher add dir failed", "dir", ev.Name, "err", err)
			}
			return
		}
	}
	if !isSchemaFile(ev.Name) {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	zap.S().Debugw("schema file changed", "file", ev.Name, "op", ev.Op.String())
	w.trigger()
}

// trigger (re)arms the debounce timer.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.fsw.Close()
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
