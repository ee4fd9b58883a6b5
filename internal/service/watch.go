package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/repository"
)

// DefaultWatchInterval is how often a watcher re-reads the wishlist.
const DefaultWatchInterval = 500 * time.Millisecond

// WishlistWatcher streams a session's wishlist to a consumer whenever it
// changes. It polls the store on a fixed interval and also wakes early on
// change notifications, so changes made by another process are seen too.
type WishlistWatcher struct {
	wishlists *WishlistService
	notifier  repository.ChangeNotifier
	interval  time.Duration
	logger    *slog.Logger
}

// NewWishlistWatcher creates a watcher. notifier may be nil for poll-only.
func NewWishlistWatcher(wishlists *WishlistService, notifier repository.ChangeNotifier, interval time.Duration, logger *slog.Logger) *WishlistWatcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &WishlistWatcher{
		wishlists: wishlists,
		notifier:  notifier,
		interval:  interval,
		logger:    logger,
	}
}

// Watch calls emit with the current wishlist, then again each time its
// contents change, until ctx is canceled or emit fails.
func (w *WishlistWatcher) Watch(ctx context.Context, session string, emit func(domain.Wishlist) error) error {
	wishlistWatchers.Inc()
	defer wishlistWatchers.Dec()

	var changes <-chan struct{}
	if w.notifier != nil {
		ch, cancel, err := w.notifier.Subscribe(ctx, session)
		if err != nil {
			w.logger.WarnContext(ctx, "wishlist change subscription failed, polling only",
				slog.String("session_id", session),
				slog.String("error", err.Error()),
			)
		} else {
			defer cancel()
			changes = ch
		}
	}

	current := w.wishlists.Get(ctx, session)
	last := current.Fingerprint()
	if err := emit(current); err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
		}

		current = w.wishlists.Get(ctx, session)
		if fp := current.Fingerprint(); fp != last {
			last = fp
			if err := emit(current); err != nil {
				return err
			}
		}
	}
}
