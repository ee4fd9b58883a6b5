package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloivanco/fanrc/internal/catalog"
	"github.com/helloivanco/fanrc/internal/domain"
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
	"github.com/helloivanco/fanrc/pkg/pagination"
)

// browseCatalog holds 30 tools followed by 10 stickers.
func browseCatalog(t *testing.T) *CatalogService {
	t.Helper()
	products := make([]domain.Product, 0, 40)
	for i := 1; i <= 40; i++ {
		typ, title := "tools", fmt.Sprintf("Hex Driver %d", i)
		if i > 30 {
			typ, title = "Stickers", fmt.Sprintf("Decal %d", i)
		}
		products = append(products, domain.Product{
			ID: int64(i), Title: title, Handle: fmt.Sprintf("item-%d", i), ProductType: typ,
			Variants: []domain.Variant{{ID: int64(i * 100), Title: domain.DefaultVariantTitle, Price: 100}},
		})
	}
	store := catalog.NewStore()
	_, err := store.Replace(products, "test")
	require.NoError(t, err)
	return NewCatalogService(store, nil)
}

func TestCatalogService_NotLoaded(t *testing.T) {
	svc := NewCatalogService(catalog.NewStore(), nil)

	_, err := svc.Browse(context.Background(), domain.QueryState{}, pagination.New(16), false)
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))

	_, err = svc.Categories()
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavail))
}

func TestCatalogService_Browse_FirstPage(t *testing.T) {
	svc := browseCatalog(t)

	res, err := svc.Browse(context.Background(), domain.QueryState{}, pagination.New(16), false)
	require.NoError(t, err)

	assert.True(t, res.Reset, "first request has no fingerprint")
	assert.Equal(t, 16, res.Shown)
	assert.Equal(t, 40, res.Filtered)
	assert.Equal(t, 40, res.Total)
	assert.True(t, res.HasMore)
	assert.Equal(t, int64(1), res.Products[0].ID)
}

func TestCatalogService_Browse_RevealMoreUntilExhausted(t *testing.T) {
	svc := browseCatalog(t)
	ctx := context.Background()
	q := domain.QueryState{}
	reveal := pagination.New(16)

	_, err := svc.Browse(ctx, q, reveal, false)
	require.NoError(t, err)

	res, err := svc.Browse(ctx, q, reveal, true)
	require.NoError(t, err)
	assert.False(t, res.Reset)
	assert.Equal(t, 32, res.Shown)

	res, err = svc.Browse(ctx, q, reveal, true)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Shown, "never reveals past the filtered total")
	assert.False(t, res.HasMore)

	res, err = svc.Browse(ctx, q, reveal, true)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Shown)
}

func TestCatalogService_Browse_QueryChangeResets(t *testing.T) {
	svc := browseCatalog(t)
	ctx := context.Background()
	reveal := pagination.Restore(16, 32, domain.QueryState{}.Fingerprint())

	res, err := svc.Browse(ctx, domain.QueryState{Term: "driver"}, reveal, true)
	require.NoError(t, err)

	assert.True(t, res.Reset)
	assert.Equal(t, 16, res.Shown, "more is ignored on the resetting request")
	assert.Equal(t, 30, res.Filtered)
	assert.Equal(t, domain.QueryState{Term: "driver"}.Fingerprint(), res.Reveal.Fingerprint)
}

func TestCatalogService_Browse_SmallResultShowsAll(t *testing.T) {
	svc := browseCatalog(t)

	res, err := svc.Browse(context.Background(), domain.QueryState{Categories: []string{"Stickers"}}, pagination.New(16), false)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Shown)
	assert.False(t, res.HasMore)
	assert.Equal(t, 10, res.Reveal.RevealCount)
}

func TestCatalogService_Browse_NoMatches(t *testing.T) {
	svc := browseCatalog(t)

	res, err := svc.Browse(context.Background(), domain.QueryState{Term: "zzz"}, pagination.New(16), false)
	require.NoError(t, err)

	assert.Empty(t, res.Products)
	assert.Zero(t, res.Filtered)
	assert.False(t, res.HasMore)
}

func TestCatalogService_Lookups(t *testing.T) {
	svc := browseCatalog(t)

	p, err := svc.ProductByHandle("item-3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)

	_, err = svc.ProductByHandle("missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	p, err = svc.ProductByID(31)
	require.NoError(t, err)
	assert.Equal(t, "Decal 31", p.Title)

	_, err = svc.ProductByID(99)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCatalogService_CheckVariant(t *testing.T) {
	svc := browseCatalog(t)

	assert.NoError(t, svc.CheckVariant(1, nil))
	assert.NoError(t, svc.CheckVariant(1, ptr(100)))
	assert.True(t, errors.Is(svc.CheckVariant(1, ptr(200)), apperrors.ErrInvalidInput))
	assert.True(t, errors.Is(svc.CheckVariant(77, nil), apperrors.ErrNotFound))
}

func TestCatalogService_Categories(t *testing.T) {
	svc := browseCatalog(t)

	groups, err := svc.Categories()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Tools", groups[0].Name)
	assert.Equal(t, []string{"tools"}, groups[0].Types)
	assert.Equal(t, catalog.OtherGroupName, groups[1].Name)
	assert.Equal(t, []string{"Stickers"}, groups[1].Types)
}
