package service

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/internal/domain"
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
	"github.com/helloivanco/fanrc/pkg/pagination"
	"github.com/helloivanco/fanrc/pkg/tracing"
)

const tracerName = "github.com/helloivanco/fanrc/internal/service"

// BrowseResult is one page of the infinite product list.
type BrowseResult struct {
	Products []domain.Product
	Shown    int
	Filtered int
	Total    int
	HasMore  bool
	Reset    bool
	Reveal   *pagination.Controller
}

// CatalogService answers catalog queries against the live snapshot.
type CatalogService struct {
	store  *catalog.Store
	groups []catalog.Group
}

// NewCatalogService creates a catalog service. Nil groups use catalog.DefaultGroups.
func NewCatalogService(store *catalog.Store, groups []catalog.Group) *CatalogService {
	if groups == nil {
		groups = catalog.DefaultGroups
	}
	return &CatalogService{store: store, groups: groups}
}

// Snapshot returns the live catalog or SERVICE_UNAVAILABLE before the first load.
func (s *CatalogService) Snapshot() (*catalog.Snapshot, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.Unavailable("catalog not loaded")
	}
	return snap, nil
}

// Browse filters the catalog and advances the client's reveal state. A
// changed query resets the reveal to one page; otherwise more grows it by
// one page. A reset wins over a reveal-more request in the same call.
func (s *CatalogService) Browse(ctx context.Context, q domain.QueryState, reveal *pagination.Controller, more bool) (*BrowseResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	_, span := tracing.Start(ctx, tracerName, "catalog.Browse",
		attribute.Int("catalog.products", snap.Len()),
		attribute.Int("query.categories", len(q.Categories)),
	)
	defer span.End()

	filtered := catalog.Filter(snap.Products(), q)

	reset := reveal.Sync(q.Fingerprint())
	if more && !reset {
		reveal.RevealMore(len(filtered))
	}
	reveal.Settle(len(filtered))

	visible := pagination.Visible(filtered, reveal)
	span.SetAttributes(attribute.Int("query.filtered", len(filtered)), attribute.Int("query.shown", len(visible)))

	return &BrowseResult{
		Products: visible,
		Shown:    len(visible),
		Filtered: len(filtered),
		Total:    snap.Len(),
		HasMore:  reveal.HasMore(len(filtered)),
		Reset:    reset,
		Reveal:   reveal,
	}, nil
}

// ProductByHandle looks up a product by its handle.
func (s *CatalogService) ProductByHandle(handle string) (domain.Product, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := snap.ByHandle(handle)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", handle)
	}
	return p, nil
}

// ProductByID looks up a product by its id.
func (s *CatalogService) ProductByID(id int64) (domain.Product, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return domain.Product{}, err
	}
	p, ok := snap.ByID(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", strconv.FormatInt(id, 10))
	}
	return p, nil
}

// CheckVariant verifies that productID exists and, when variantID is set,
// that the variant belongs to it.
func (s *CatalogService) CheckVariant(productID int64, variantID *int64) error {
	p, err := s.ProductByID(productID)
	if err != nil {
		return err
	}
	if variantID != nil {
		if _, ok := p.FindVariant(*variantID); !ok {
			return apperrors.InvalidInput("variant " + strconv.FormatInt(*variantID, 10) + " does not belong to product " + strconv.FormatInt(productID, 10))
		}
	}
	return nil
}

// Categories returns the product types present in the catalog, grouped.
func (s *CatalogService) Categories() ([]catalog.CategoryGroup, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return catalog.GroupTypes(s.groups, snap.Types()), nil
}
