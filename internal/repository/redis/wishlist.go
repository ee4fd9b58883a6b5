package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/repository"
	"github.com/helloivanco/fanrc/pkg/database"
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using one
// Redis string per session holding the JSON array of entries.
type WishlistRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWishlistRepository creates a new Redis-backed wishlist repository.
// A zero ttl stores blobs without expiry.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{
		client: client,
		ttl:    ttl,
	}
}

func key(session string) string {
	return repository.KeyPrefix + ":" + session
}

// Load retrieves a session's wishlist from Redis.
func (r *WishlistRepository) Load(ctx context.Context, session string) (w domain.Wishlist, err error) {
	k := key(session)
	ctx, end := database.TraceCommand(ctx, "GET", k)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Wishlist{}, nil
		}
		return nil, fmt.Errorf("redis get wishlist: %w: %w", apperrors.ErrStorage, err)
	}

	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}
	return w, nil
}

// Save persists the wishlist with the configured TTL.
func (r *WishlistRepository) Save(ctx context.Context, session string, w domain.Wishlist) (err error) {
	k := key(session)
	ctx, end := database.TraceCommand(ctx, "SET", k)
	defer func() { end(err) }()

	if w == nil {
		w = domain.Wishlist{}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, k, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w: %w", apperrors.ErrStorage, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *WishlistRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
