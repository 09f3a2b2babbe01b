package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// DefaultDebounce coalesces bursts of writes (editors often write a file
// several times when saving).
const DefaultDebounce = 200 * time.Millisecond

// ReloadError wraps a failed reload with its phase and retry count.
type ReloadError struct {
	Phase   string // "load" or "hash"
	Cause   error
	Time    time.Time
	Retries int // Consecutive failures, this one included
}

func (e ReloadError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e ReloadError) Unwrap() error {
	return e.Cause
}

// Reload is delivered for every change of the watched file: either a new
// forest with its fingerprint, or the error that prevented loading it.
type Reload struct {
	Forest model.Forest
	Hash   uint64
	Err    *ReloadError
}

// Watcher reloads a source file whenever it changes on disk. Reloads whose
// content is unchanged are dropped.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
	load     func(context.Context, string) (model.Forest, error)

	fs      *fsnotify.Watcher
	reloads chan Reload

	mu         sync.Mutex
	lastHash   uint64
	errorCount int
	started    bool
	stopped    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(l *log.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

// WithLoadFunc replaces Load, mainly for tests.
func WithLoadFunc(fn func(context.Context, string) (model.Forest, error)) WatchOption {
	return func(w *Watcher) { w.load = fn }
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   log.Default(),
		load:     Load,
		fs:       fs,
		reloads:  make(chan Reload, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reloads delivers reload results. The channel is closed after Stop.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Prime records the fingerprint of an already loaded forest so that the
// first change event with identical content is dropped.
func (w *Watcher) Prime(forest model.Forest) {
	h, err := Fingerprint(forest)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.lastHash = h
	w.mu.Unlock()
}

// Start watches the directory containing the file, since editors commonly
// replace files by rename. Start is idempotent.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.started = true
	go w.loop(ctx)
	return nil
}

// Stop halts watching and closes the Reloads channel. Stop is idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.fs.Close()

	if started {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
		}
	} else {
		close(w.reloads)
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.reloads)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if r, ok := w.reload(ctx); ok {
				select {
				case w.reloads <- r:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "err", err)
		}
	}
}

// reload loads the file and reports whether the result should be delivered.
func (w *Watcher) reload(ctx context.Context) (Reload, bool) {
	start := time.Now()

	var forest model.Forest
	if rerr := w.safe("load", func() error {
		var err error
		forest, err = w.load(ctx, w.path)
		return err
	}); rerr != nil {
		w.logger.Warn("reload failed", "path", w.path, "err", rerr)
		return Reload{Err: rerr}, true
	}

	var hash uint64
	if rerr := w.safe("hash", func() error {
		var err error
		hash, err = Fingerprint(forest)
		return err
	}); rerr != nil {
		w.logger.Warn("reload failed", "path", w.path, "err", rerr)
		return Reload{Err: rerr}, true
	}

	w.mu.Lock()
	w.errorCount = 0
	unchanged := hash == w.lastHash
	w.lastHash = hash
	w.mu.Unlock()

	if unchanged {
		w.logger.Debug("content unchanged, skipping reload", "path", w.path, "hash", fmt.Sprintf("%016x", hash))
		return Reload{}, false
	}
	w.logger.Debug("reloaded", "path", w.path, "nodes", forest.Len(), "took", time.Since(start))
	return Reload{Forest: forest, Hash: hash}, true
}

// safe runs fn and turns errors and panics into a ReloadError.
func (w *Watcher) safe(phase string, fn func() error) (result *ReloadError) {
	defer func() {
		if r := recover(); r != nil {
			result = &ReloadError{Phase: phase, Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()), Time: time.Now()}
		}
		if result != nil {
			w.mu.Lock()
			w.errorCount++
			result.Retries = w.errorCount
			w.mu.Unlock()
		}
	}()
	if err := fn(); err != nil {
		return &ReloadError{Phase: phase, Cause: err, Time: time.Now()}
	}
	return nil
}
