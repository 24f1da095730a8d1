// Package watch re-runs a callback when session files under a root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Zuo-Peng/wwdc-sessions/internal/parse"
)

// DefaultDebounce collapses bursts of writes (editors, git checkouts) into one run.
const DefaultDebounce = 300 * time.Millisecond

type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	log      zerolog.Logger
}

// New watches root and every non-hidden directory below it.
func New(root string, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{fs: fw, root: root, debounce: debounce, log: log}
	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run blocks until ctx is done, calling onChange once per settled burst of
// relevant events. Callback errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.log.Error().Err(err).Msg("rebuild failed")
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn().Err(err).Str("path", event.Name).Msg("watch new directory")
			}
			return true
		}
	}

	if name == parse.SessionsFileName {
		return true
	}
	// a removed or renamed directory may have held a session file
	return event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}
