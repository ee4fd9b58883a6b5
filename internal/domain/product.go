package domain

import (
	apperrors "github.com/helloivanco/fanrc/pkg/errors"
	"github.com/helloivanco/fanrc/pkg/slug"
)

// DefaultVariantTitle is the title Shopify-style catalogs give the only
// variant of a product without options.
const DefaultVariantTitle = "Default Title"

// Product is an immutable catalog record.
type Product struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Handle          string    `json:"handle"`
	URL             string    `json:"url"`
	DescriptionHTML string    `json:"description_html"`
	DescriptionText string    `json:"description_text"`
	Images          []string  `json:"images"`
	FeaturedImage   string    `json:"featured_image"`
	Vendor          string    `json:"vendor"`
	ProductType     string    `json:"product_type"`
	Tags            []string  `json:"tags"`
	Options         []Option  `json:"options"`
	Variants        []Variant `json:"variants"`
}

// Variant is a purchasable configuration of a product. Price is in cents.
type Variant struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	SKU            string  `json:"sku"`
	Price          int64   `json:"price"`
	CompareAtPrice *int64  `json:"compare_at_price"`
	Available      bool    `json:"available"`
	Option1        *string `json:"option1"`
	Option2        *string `json:"option2"`
	Option3        *string `json:"option3"`
}

// Option describes one axis of variation (e.g. "Color").
type Option struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// PriceRange is the lowest and highest variant price of a product.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// DefaultVariant returns the first variant.
func (p *Product) DefaultVariant() (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}
	return p.Variants[0], true
}

// FindVariant returns the variant with the given id.
func (p *Product) FindVariant(id int64) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// PriceRange returns the min and max variant price.
func (p *Product) PriceRange() PriceRange {
	if len(p.Variants) == 0 {
		return PriceRange{}
	}
	r := PriceRange{Min: p.Variants[0].Price, Max: p.Variants[0].Price}
	for _, v := range p.Variants[1:] {
		r.Min = min(r.Min, v.Price)
		r.Max = max(r.Max, v.Price)
	}
	return r
}

// Available reports whether any variant can be ordered.
func (p *Product) Available() bool {
	for _, v := range p.Variants {
		if v.Available {
			return true
		}
	}
	return false
}

// Validate checks the invariants a product must hold to enter a catalog.
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return apperrors.InvalidCatalog("product %q has invalid id %d", p.Title, p.ID)
	}
	if p.Handle == "" {
		return apperrors.InvalidCatalog("product %d has no handle", p.ID)
	}
	if !slug.Valid(p.Handle) {
		return apperrors.InvalidCatalog("product %d has handle %q that is not URL-safe", p.ID, p.Handle)
	}
	if len(p.Variants) == 0 {
		return apperrors.InvalidCatalog("product %d has no variants", p.ID)
	}
	seen := make(map[int64]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		if v.Price < 0 {
			return apperrors.InvalidCatalog("product %d variant %d has negative price", p.ID, v.ID)
		}
		if _, dup := seen[v.ID]; dup {
			return apperrors.InvalidCatalog("product %d has duplicate variant id %d", p.ID, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}
