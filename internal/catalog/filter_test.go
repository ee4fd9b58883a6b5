package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helloivanco/fanrc/internal/domain"
)

func TestFilter_EmptyQueryReturnsAllInOrder(t *testing.T) {
	products := testProducts()
	got := Filter(products, domain.QueryState{})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
}

func TestFilter_TermMatchesFields(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"title case-insensitive", "CHASSIS", []int64{1, 4}},
		{"description", "hardened", []int64{3}},
		{"product type", "turnbuck", []int64{2}},
		{"tag", "b4", []int64{2}},
		{"tag substring", "shop", []int64{3}},
		{"no match", "servo", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testProducts(), domain.QueryState{Term: tt.term})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_CategoryIsExactAndCaseSensitive(t *testing.T) {
	products := testProducts()

	got := Filter(products, domain.QueryState{Categories: []string{"tools"}})
	assert.Equal(t, []int64{3}, ids(got))

	got = Filter(products, domain.QueryState{Categories: []string{"Tools"}})
	assert.Empty(t, got)

	got = Filter(products, domain.QueryState{Categories: []string{"bumpers", "Chassis Parts"}})
	assert.Equal(t, []int64{1, 4}, ids(got), "order follows the catalog, not the selection")
}

func TestFilter_TermAndCategoryBothRequired(t *testing.T) {
	got := Filter(testProducts(), domain.QueryState{Term: "carbon", Categories: []string{"bumpers"}})
	assert.Equal(t, []int64{4}, ids(got))
}

func TestFilter_ResultIsOrderedSubsequence(t *testing.T) {
	products := testProducts()
	queries := []domain.QueryState{
		{Term: "a"},
		{Term: "e", Categories: []string{"tools", "Stickers", "Turnbuckles"}},
		{Categories: []string{"Stickers", "Chassis Parts"}},
	}

	for _, q := range queries {
		got := Filter(products, q)
		j := 0
		for _, p := range got {
			for j < len(products) && products[j].ID != p.ID {
				j++
			}
			assert.Less(t, j, len(products), "result %d is not an ordered subsequence", p.ID)
			j++
		}
	}
}

func TestFilter_Deterministic(t *testing.T) {
	q := domain.QueryState{Term: "t", Categories: []string{"tools", "Turnbuckles"}}
	assert.Equal(t, Filter(testProducts(), q), Filter(testProducts(), q))
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	products := testProducts()
	_ = Filter(products, domain.QueryState{Term: "carbon"})
	assert.Equal(t, testProducts(), products)
}
