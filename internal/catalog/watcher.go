package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Reloader loads the catalog into a Store and keeps it fresh, either by
// watching the catalog file or by refreshing a remote source on an interval.
type Reloader struct {
	store    *Store
	loader   Loader
	logger   *slog.Logger
	interval time.Duration
	watch    bool
	debounce time.Duration

	mu          sync.Mutex
	subscribers []func(*Snapshot)
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithRefreshInterval reloads the catalog every d. Zero disables it.
func WithRefreshInterval(d time.Duration) ReloaderOption {
	return func(r *Reloader) { r.interval = d }
}

// WithFileWatch reloads a file catalog whenever the file changes.
func WithFileWatch(enabled bool) ReloaderOption {
	return func(r *Reloader) { r.watch = enabled }
}

// NewReloader creates a reloader for store fed by loader.
func NewReloader(store *Store, loader Loader, logger *slog.Logger, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		store:    store,
		loader:   loader,
		logger:   logger,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn to be called after every successful reload.
func (r *Reloader) Subscribe(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Reload loads the catalog once and swaps it in. A failed load or an invalid
// catalog leaves the previous snapshot live.
func (r *Reloader) Reload(ctx context.Context) (*Snapshot, error) {
	products, err := r.loader.Load(ctx)
	if err != nil {
		catalogReloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load catalog from %s: %w", r.loader.Source(), err)
	}

	snap, err := r.store.Replace(products, r.loader.Source())
	if err != nil {
		return nil, fmt.Errorf("validate catalog from %s: %w", r.loader.Source(), err)
	}

	r.logger.InfoContext(ctx, "catalog loaded",
		slog.String("source", snap.Source),
		slog.Int("products", snap.Len()),
		slog.Int("product_types", len(snap.Types())),
	)

	r.mu.Lock()
	subs := make([]func(*Snapshot), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return snap, nil
}

// Run keeps the catalog fresh until ctx is canceled. It returns immediately
// when neither file watching nor periodic refresh applies.
func (r *Reloader) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var errs <-chan error
	var target string

	if fl, ok := r.loader.(*FileLoader); ok && r.watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create catalog watcher: %w", err)
		}
		defer func() { _ = w.Close() }()

		// Watch the directory: editors and deploy tools replace files by
		// rename, which drops a watch on the file itself.
		target = filepath.Clean(fl.Path)
		if err := w.Add(filepath.Dir(target)); err != nil {
			return fmt.Errorf("watch catalog directory: %w", err)
		}
		events, errs = w.Events, w.Errors
		r.logger.Info("watching catalog file", slog.String("path", target))
	}

	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	if events == nil && tick == nil {
		return nil
	}

	debounce := time.NewTimer(r.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(r.debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			r.logger.Warn("catalog watcher error", slog.String("error", err.Error()))
		case <-debounce.C:
			r.reloadLogged(ctx, "file change")
		case <-tick:
			r.reloadLogged(ctx, "refresh")
		}
	}
}

func (r *Reloader) reloadLogged(ctx context.Context, reason string) {
	if _, err := r.Reload(ctx); err != nil {
		r.logger.ErrorContext(ctx, "catalog reload failed, keeping previous snapshot",
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
	}
}
