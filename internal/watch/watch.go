// Package watch recompiles a layer stack when its project or catalog files
// change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/brunoga/layerstack/compiler"
	"github.com/brunoga/layerstack/internal/logging"
)

// DefaultExtensions are the file types that trigger a recompile inside a
// watched directory.
var DefaultExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before onChange runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithExtensions replaces DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = append([]string(nil), exts...)
	}
}

// Watcher watches files and directories and reports changes through a
// compiler.Debouncer.
type Watcher struct {
	interval   time.Duration
	extensions []string
	logger     logrus.FieldLogger

	fs        *fsnotify.Watcher
	debouncer *compiler.Debouncer

	// files are watched individually, dirs for every file with a known
	// extension.
	files map[string]bool
	dirs  map[string]bool

	mu      sync.Mutex
	running bool
}

// New watches paths, which may be files or directories. Files are watched
// through their parent directory so editors that replace files on save are
// still seen.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		interval:   100 * time.Millisecond,
		extensions: DefaultExtensions,
		logger:     logging.Discard(),
		files:      make(map[string]bool),
		dirs:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fs = fs

	watched := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", p, err)
		}

		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if watched[dir] {
			continue
		}
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
		watched[dir] = true
		w.logger.WithField("path", dir).Debug("watching directory")
	}

	w.debouncer = compiler.NewDebouncer(w.interval)
	return w, nil
}

// Run blocks, calling onChange after each burst of relevant changes, until
// ctx is cancelled. Errors from onChange are logged and do not stop the
// watcher. The underlying watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debouncer.Stop()
		w.fs.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watcher stopped")
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("file changed")

			w.debouncer.Trigger(func() {
				if err := onChange(); err != nil {
					w.logger.WithError(err).Error("recompile failed")
				}
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.WithError(err).Warn("watcher error")
		}
	}
}

// relevant reports whether event should trigger a recompile.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	if w.files[name] {
		return true
	}
	if !w.dirs[filepath.Dir(name)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, valid := range w.extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
