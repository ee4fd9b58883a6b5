package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/repository"
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
)

// Wishlist upper-bound limits to keep the blob small.
const (
	// MaxQuantityPerEntry is the maximum quantity of a single entry.
	MaxQuantityPerEntry = 999
	// MaxEntries is the maximum number of distinct entries.
	MaxEntries = 200
)

// EventPublisher publishes wishlist domain events.
type EventPublisher interface {
	PublishWishlistUpdated(ctx context.Context, session string, w domain.Wishlist) error
	PublishWishlistCleared(ctx context.Context, session string) error
}

// WishlistService implements the wishlist store on top of a blob repository.
//
// Every mutation is a full read-modify-write of the session's blob without a
// lock, so concurrent writers race and the last write wins. A failed write is
// logged and counted but the mutated list is still returned.
type WishlistService struct {
	repo     repository.WishlistRepository
	notifier repository.ChangeNotifier
	events   EventPublisher
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service. notifier and events may be nil.
func NewWishlistService(repo repository.WishlistRepository, notifier repository.ChangeNotifier, events EventPublisher, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		repo:     repo,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Get returns the session's wishlist. It never fails: a missing, unreadable
// or corrupt blob reads as an empty wishlist.
func (s *WishlistService) Get(ctx context.Context, session string) domain.Wishlist {
	if session == "" {
		return domain.Wishlist{}
	}
	w, err := s.repo.Load(ctx, session)
	if err != nil {
		wishlistReadFailures.Inc()
		s.logger.WarnContext(ctx, "wishlist unreadable, treating as empty",
			slog.String("session_id", session),
			slog.String("error", err.Error()),
		)
		return domain.Wishlist{}
	}
	return w.Sanitize()
}

// Contains reports whether the session's wishlist has an entry with exactly
// this product and variant.
func (s *WishlistService) Contains(ctx context.Context, session string, productID int64, variantID *int64) bool {
	return s.Get(ctx, session).Contains(domain.NewKey(productID, variantID))
}

// Add merges quantity into the entry for (productID, variantID) or appends a
// new entry.
func (s *WishlistService) Add(ctx context.Context, session string, productID int64, variantID *int64, quantity int) (domain.Wishlist, error) {
	if err := validateKey(session, productID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if quantity > MaxQuantityPerEntry {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerEntry))
	}

	key := domain.NewKey(productID, variantID)
	current := s.Get(ctx, session)
	if i := current.Index(key); i >= 0 {
		if current[i].Quantity+quantity > MaxQuantityPerEntry {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerEntry))
		}
	} else if len(current) >= MaxEntries {
		return nil, apperrors.InvalidInput(fmt.Sprintf("wishlist must not contain more than %d items", MaxEntries))
	}

	updated := current.Add(key, quantity)
	s.persist(ctx, session, "add", updated)

	s.logger.InfoContext(ctx, "item added to wishlist",
		slog.String("session_id", session),
		slog.String("key", key.String()),
		slog.Int("quantity", quantity),
	)
	return updated, nil
}

// Remove deletes the entry with exactly this key. Removing an absent entry
// is not an error and writes nothing.
func (s *WishlistService) Remove(ctx context.Context, session string, productID int64, variantID *int64) (domain.Wishlist, error) {
	if err := validateKey(session, productID); err != nil {
		return nil, err
	}

	key := domain.NewKey(productID, variantID)
	current := s.Get(ctx, session)
	if !current.Contains(key) {
		return current, nil
	}

	updated := current.Remove(key)
	s.persist(ctx, session, "remove", updated)

	s.logger.InfoContext(ctx, "item removed from wishlist",
		slog.String("session_id", session),
		slog.String("key", key.String()),
	)
	return updated, nil
}

// SetQuantity replaces the quantity of an existing entry. Zero removes it.
func (s *WishlistService) SetQuantity(ctx context.Context, session string, productID int64, variantID *int64, quantity int) (domain.Wishlist, error) {
	if err := validateKey(session, productID); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerEntry {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerEntry))
	}

	key := domain.NewKey(productID, variantID)
	updated, found := s.Get(ctx, session).SetQuantity(key, quantity)
	if !found {
		return nil, apperrors.NotFound("wishlist item", key.String())
	}
	s.persist(ctx, session, "set_quantity", updated)
	return updated, nil
}

// Clear empties the session's wishlist.
func (s *WishlistService) Clear(ctx context.Context, session string) (domain.Wishlist, error) {
	if session == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	empty := domain.Wishlist{}
	s.persist(ctx, session, "clear", empty)

	s.logger.InfoContext(ctx, "wishlist cleared", slog.String("session_id", session))
	return empty, nil
}

// Ping checks the backing store.
func (s *WishlistService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// persist writes w and, on success, announces the change. A write failure is
// logged and counted; the caller keeps the in-memory result.
func (s *WishlistService) persist(ctx context.Context, session, operation string, w domain.Wishlist) {
	wishlistMutations.WithLabelValues(operation).Inc()

	if err := s.repo.Save(ctx, session, w); err != nil {
		wishlistPersistFailures.Inc()
		s.logger.ErrorContext(ctx, "failed to persist wishlist",
			slog.String("session_id", session),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, session); err != nil {
			s.logger.WarnContext(ctx, "failed to notify wishlist watchers",
				slog.String("session_id", session),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.events == nil {
		return
	}
	var err error
	if operation == "clear" {
		err = s.events.PublishWishlistCleared(ctx, session)
	} else {
		err = s.events.PublishWishlistUpdated(ctx, session, w)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist event",
			slog.String("session_id", session),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
}

func validateKey(session string, productID int64) error {
	if session == "" {
		return apperrors.InvalidInput("session id is required")
	}
	if productID <= 0 {
		return apperrors.InvalidInput("product id must be positive")
	}
	return nil
}
