package catalog

import (
	"sync/atomic"
	"time"

	"github.com/helloivanco/fanrc/internal/domain"
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
)

// Snapshot is an immutable, validated view of the catalog. Callers must not
// modify the returned products.
type Snapshot struct {
	products []domain.Product
	byHandle map[string]int
	byID     map[int64]int
	types    []string

	Source   string
	LoadedAt time.Time
}

// NewSnapshot validates products and indexes them by id and handle.
func NewSnapshot(products []domain.Product, source string) (*Snapshot, error) {
	s := &Snapshot{
		products: products,
		byHandle: make(map[string]int, len(products)),
		byID:     make(map[int64]int, len(products)),
		Source:   source,
		LoadedAt: time.Now().UTC(),
	}
	for i := range products {
		p := &products[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, apperrors.InvalidCatalog("duplicate product id %d", p.ID)
		}
		if _, dup := s.byHandle[p.Handle]; dup {
			return nil, apperrors.InvalidCatalog("duplicate product handle %q", p.Handle)
		}
		s.byID[p.ID] = i
		s.byHandle[p.Handle] = i
	}
	s.types = ProductTypes(products)
	return s, nil
}

// Products returns the full product list in catalog order.
func (s *Snapshot) Products() []domain.Product { return s.products }

// Len is the number of products.
func (s *Snapshot) Len() int { return len(s.products) }

// Types returns the distinct product types, sorted.
func (s *Snapshot) Types() []string { return s.types }

// ByHandle looks up a product by handle.
func (s *Snapshot) ByHandle(handle string) (domain.Product, bool) {
	i, ok := s.byHandle[handle]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// ByID looks up a product by id.
func (s *Snapshot) ByID(id int64) (domain.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Store holds the live snapshot. Readers never block; a reload swaps the
// pointer so in-flight requests keep the snapshot they started with.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace validates products and makes them the live snapshot. On error the
// previous snapshot stays live.
func (s *Store) Replace(products []domain.Product, source string) (*Snapshot, error) {
	snap, err := NewSnapshot(products, source)
	if err != nil {
		catalogReloadsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	s.current.Store(snap)
	catalogReloadsTotal.WithLabelValues("success").Inc()
	catalogProducts.Set(float64(snap.Len()))
	return snap, nil
}
