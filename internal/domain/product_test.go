package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/helloivanco/fanrc/pkg/errors"
)

func sampleProduct() Product {
	return Product{
		ID:     1,
		Title:  "Carbon Chassis",
		Handle: "carbon-chassis",
		Variants: []Variant{
			{ID: 10, Title: "Black", SKU: "CC-B", Price: 4500},
			{ID: 11, Title: "Blue", SKU: "CC-U", Price: 5200, Available: true},
			{ID: 12, Title: "Raw", SKU: "CC-R", Price: 3900},
		},
	}
}

func TestProduct_DefaultVariant(t *testing.T) {
	p := sampleProduct()
	v, ok := p.DefaultVariant()
	require.True(t, ok)
	assert.Equal(t, int64(10), v.ID)

	_, ok = (&Product{}).DefaultVariant()
	assert.False(t, ok)
}

func TestProduct_FindVariant(t *testing.T) {
	p := sampleProduct()
	v, ok := p.FindVariant(11)
	require.True(t, ok)
	assert.Equal(t, "CC-U", v.SKU)

	_, ok = p.FindVariant(99)
	assert.False(t, ok)
}

func TestProduct_PriceRange(t *testing.T) {
	p := sampleProduct()
	assert.Equal(t, PriceRange{Min: 3900, Max: 5200}, p.PriceRange())
	assert.Equal(t, PriceRange{}, (&Product{}).PriceRange())
}

func TestProduct_Available(t *testing.T) {
	p := sampleProduct()
	assert.True(t, p.Available())

	p.Variants = p.Variants[:1]
	assert.False(t, p.Available())
}

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Product)
		ok     bool
	}{
		{"valid", func(p *Product) {}, true},
		{"zero id", func(p *Product) { p.ID = 0 }, false},
		{"missing handle", func(p *Product) { p.Handle = "" }, false},
		{"unsafe handle", func(p *Product) { p.Handle = "Carbon Chassis" }, false},
		{"no variants", func(p *Product) { p.Variants = nil }, false},
		{"negative price", func(p *Product) { p.Variants[1].Price = -1 }, false},
		{"duplicate variant", func(p *Product) { p.Variants[2].ID = 10 }, false},
		{"zero price allowed", func(p *Product) { p.Variants[0].Price = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProduct()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidCatalog))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "5.00", FormatPrice(500))
	assert.Equal(t, "19.99", FormatPrice(1999))
	assert.Equal(t, "0.05", FormatPrice(5))
	assert.Equal(t, "0.00", FormatPrice(0))
	assert.Equal(t, "1234.50", FormatPrice(123450))
	assert.Equal(t, "-2.50", FormatPrice(-250))
}

func TestQueryState_Fingerprint(t *testing.T) {
	a := QueryState{Term: "shock", Categories: []string{"tools", "Hardware"}}
	b := QueryState{Term: "shock", Categories: []string{"Hardware", "tools"}}
	assert.Equal(t, "shock|Hardware,tools", a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, []string{"tools", "Hardware"}, a.Categories, "fingerprint must not reorder the selection")

	assert.Equal(t, "|", QueryState{}.Fingerprint())
	assert.NotEqual(t, QueryState{Term: "Shock"}.Fingerprint(), QueryState{Term: "shock"}.Fingerprint())
}

func TestQueryState_FingerprintUnescapedCollision(t *testing.T) {
	a := QueryState{Term: "a|"}
	b := QueryState{Term: "a", Categories: []string{"|"}}
	assert.Equal(t, "a||", a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "separators are not escaped")
}
