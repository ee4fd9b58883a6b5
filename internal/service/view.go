package service

import (
	"strconv"

	"github.com/helloivanco/fanrc/internal/domain"
)

// WishlistLine is a wishlist entry resolved against the catalog.
type WishlistLine struct {
	ProductID    int64  `json:"product_id"`
	VariantID    *int64 `json:"variant_id,omitempty"`
	Handle       string `json:"handle"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title,omitempty"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	LineTotal    int64  `json:"line_total"`
	Image        string `json:"image,omitempty"`
	URL          string `json:"url,omitempty"`
	Available    bool   `json:"available"`
}

// WishlistView is the wishlist panel: resolved lines plus badge count and total.
type WishlistView struct {
	Items     []WishlistLine `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     int64          `json:"total"`
	Dangling  int            `json:"dangling"`
}

// ResolveWishlist resolves every entry against the catalog. Dangling entries
// are counted but not listed. The "Default Title" variant label is hidden.
func ResolveWishlist(entries domain.Wishlist, products ProductLookup) WishlistView {
	view := WishlistView{Items: make([]WishlistLine, 0, len(entries))}
	for _, e := range entries {
		line, ok := resolveLine(e, products)
		if !ok {
			view.Dangling++
			continue
		}
		if line.VariantTitle == domain.DefaultVariantTitle {
			line.VariantTitle = ""
		}
		view.Items = append(view.Items, line)
		view.ItemCount += line.Quantity
		view.Total += line.LineTotal
	}
	return view
}

// resolveLine resolves one entry. An entry without a variant, or whose variant
// id is unknown, is priced from the default variant and carries no variant title.
func resolveLine(e domain.Entry, products ProductLookup) (WishlistLine, bool) {
	p, ok := products.ByID(e.ProductID)
	if !ok {
		return WishlistLine{}, false
	}
	def, ok := p.DefaultVariant()
	if !ok {
		return WishlistLine{}, false
	}

	line := WishlistLine{
		ProductID: p.ID,
		VariantID: e.VariantID,
		Handle:    p.Handle,
		Title:     p.Title,
		SKU:       def.SKU,
		Quantity:  e.Quantity,
		UnitPrice: def.Price,
		Image:     p.FeaturedImage,
		URL:       p.URL,
		Available: def.Available,
	}
	if e.VariantID != nil {
		if v, found := p.FindVariant(*e.VariantID); found {
			line.VariantTitle = v.Title
			line.SKU = v.SKU
			line.UnitPrice = v.Price
			line.Available = v.Available
		}
	}
	line.LineTotal = line.UnitPrice * int64(line.Quantity)
	return line, true
}

func itoa(n int) string { return strconv.Itoa(n) }
