// Package specwatch keeps a value built from a contract file current as the
// file changes.
//
// The held value is replaced atomically: readers always see either the
// previous or the new value, never a partially built one. A reload that fails
// leaves the previous value in place.
package specwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/erraggy/oasguard/contract"
)

// DefaultDebounce is how long a burst of file events must be quiet before a
// reload starts.
const DefaultDebounce = 200 * time.Millisecond

// Loader builds the held value from the file at path.
type Loader[T any] func(ctx context.Context, path string) (*T, error)

// Option configures a Holder.
type Option func(*config)

type config struct {
	logger   contract.Logger
	debounce time.Duration
	onReload func(generation uint64, err error)
}

// WithLogger sets the logger for reload results.
func WithLogger(l contract.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a reload. Zero reloads on every event.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithOnReload registers a callback invoked after every reload attempt made by
// the watcher. err is nil when the new value was installed.
func WithOnReload(fn func(generation uint64, err error)) Option {
	return func(c *config) {
		c.onReload = fn
	}
}

// Holder owns the current value built from one file.
type Holder[T any] struct {
	path string
	load Loader[T]
	cfg  config

	current    atomic.Pointer[T]
	generation atomic.Uint64

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New loads path once and returns a Holder for the result. The initial load
// must succeed.
func New[T any](ctx context.Context, path string, load Loader[T], opts ...Option) (*Holder[T], error) {
	if load == nil {
		return nil, errors.New("specwatch: loader cannot be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("specwatch: %w", err)
	}

	cfg := config{logger: contract.NopLogger{}, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Holder[T]{path: abs, load: load, cfg: cfg}
	v, err := load(ctx, abs)
	if err != nil {
		return nil, err
	}
	h.current.Store(v)
	h.generation.Store(1)
	return h, nil
}

// Path returns the absolute path of the watched file.
func (h *Holder[T]) Path() string {
	return h.path
}

// Current returns the most recently installed value.
func (h *Holder[T]) Current() *T {
	return h.current.Load()
}

// Generation counts installed values, starting at 1 for the initial load.
func (h *Holder[T]) Generation() uint64 {
	return h.generation.Load()
}

// Reload rebuilds the value now. On failure the previous value stays current
// and the error is returned.
func (h *Holder[T]) Reload(ctx context.Context) error {
	v, err := h.load(ctx, h.path)
	if err != nil {
		h.cfg.logger.Warn("contract reload failed, keeping previous version",
			"path", h.path, "generation", h.generation.Load(), "error", err.Error())
		return err
	}
	h.current.Store(v)
	gen := h.generation.Add(1)
	h.cfg.logger.Info("contract reloaded", "path", h.path, "generation", gen)
	return nil
}

// Watch starts watching the file's directory, which also catches editors that
// replace the file by renaming. It returns once the watch is registered;
// reloads run in the background until ctx is done or Close is called.
func (h *Holder[T]) Watch(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watcher != nil {
		return errors.New("specwatch: already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("specwatch: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("specwatch: watching %s: %w", filepath.Dir(h.path), err)
	}

	h.watcher = w
	h.done = make(chan struct{})
	go h.run(ctx, w, h.done)
	return nil
}

// Close stops a running watch and waits for it to finish.
func (h *Holder[T]) Close() error {
	h.mu.Lock()
	w, done := h.watcher, h.done
	h.watcher, h.done = nil, nil
	h.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

func (h *Holder[T]) run(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

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
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != h.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(h.cfg.debounce)
			} else {
				timer.Reset(h.cfg.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			err := h.Reload(ctx)
			if h.cfg.onReload != nil {
				h.cfg.onReload(h.generation.Load(), err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.cfg.logger.Warn("file watch error", "path", h.path, "error", err.Error())
		}
	}
}
