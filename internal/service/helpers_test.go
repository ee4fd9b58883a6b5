package service

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/helloivanco/fanrc/internal/domain"
	"github.com/helloivanco/fanrc/internal/repository/memory"
)

func ptr(v int64) *int64 { return &v }

// failingRepo wraps the memory repository and fails on demand.
type failingRepo struct {
	*memory.WishlistRepository
	mu        sync.Mutex
	failLoad  bool
	failSave  bool
	saveCalls int
}

func newFailingRepo() *failingRepo {
	return &failingRepo{WishlistRepository: memory.NewWishlistRepository()}
}

func (r *failingRepo) Load(ctx context.Context, session string) (domain.Wishlist, error) {
	r.mu.Lock()
	fail := r.failLoad
	r.mu.Unlock()
	if fail {
		return nil, errors.New("storage unavailable")
	}
	return r.WishlistRepository.Load(ctx, session)
}

func (r *failingRepo) Save(ctx context.Context, session string, w domain.Wishlist) error {
	r.mu.Lock()
	r.saveCalls++
	fail := r.failSave
	r.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return r.WishlistRepository.Save(ctx, session, w)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishWishlistUpdated(ctx context.Context, session string, w domain.Wishlist) error {
	return m.Called(ctx, session, w).Error(0)
}

func (m *mockEvents) PublishWishlistCleared(ctx context.Context, session string) error {
	return m.Called(ctx, session).Error(0)
}

func summaryProducts() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Title: "Widget", Handle: "widget", URL: "https://fanrc.example/products/widget",
			Variants: []domain.Variant{{ID: 10, Title: "Default Title", SKU: "W-1", Price: 500, Available: true}},
		},
		{
			ID: 2, Title: "Shock Set", Handle: "shock-set",
			Variants: []domain.Variant{
				{ID: 20, Title: "Front", SKU: "SS-F", Price: 1999, Available: true},
				{ID: 21, Title: "Rear", SKU: "SS-R", Price: 2499},
			},
		},
	}
}
