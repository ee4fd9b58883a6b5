// Package memory provides in-process wishlist storage for development and
// single-replica deployments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/helloivanco/fanrc/internal/domain"
)

// WishlistRepository keeps each session's wishlist as a serialized blob so
// that callers never share slices with the store.
type WishlistRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewWishlistRepository creates an empty in-memory repository.
func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{blobs: make(map[string][]byte)}
}

// Load returns the session's wishlist.
func (r *WishlistRepository) Load(_ context.Context, session string) (domain.Wishlist, error) {
	r.mu.RLock()
	data, ok := r.blobs[session]
	r.mu.RUnlock()
	if !ok {
		return domain.Wishlist{}, nil
	}

	var w domain.Wishlist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}
	return w, nil
}

// Save overwrites the session's wishlist.
func (r *WishlistRepository) Save(_ context.Context, session string, w domain.Wishlist) error {
	if w == nil {
		w = domain.Wishlist{}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	r.mu.Lock()
	r.blobs[session] = data
	r.mu.Unlock()
	return nil
}

// SetRaw stores an arbitrary blob for session. Used to seed corrupt data in tests.
func (r *WishlistRepository) SetRaw(session string, data []byte) {
	r.mu.Lock()
	r.blobs[session] = data
	r.mu.Unlock()
}

// Ping always succeeds.
func (r *WishlistRepository) Ping(context.Context) error { return nil }
