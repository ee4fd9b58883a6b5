package service

import (
	"net/url"
	"strings"

	"github.com/helloivanco/fanrc/internal/domain"
)

// Default order message framing.
const (
	DefaultGreeting = "Hi Fan RC! I'm interested in purchasing the following items:"
	DefaultClosing  = "Please let me know if these items are available and how to proceed with the purchase. Thank you!"
)

// ProductLookup resolves products by id. *catalog.Snapshot satisfies it.
type ProductLookup interface {
	ByID(id int64) (domain.Product, bool)
}

// ProductIndex is a ProductLookup over a plain product list.
type ProductIndex map[int64]domain.Product

// NewProductIndex indexes products by id.
func NewProductIndex(products []domain.Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

// ByID looks up a product.
func (idx ProductIndex) ByID(id int64) (domain.Product, bool) {
	p, ok := idx[id]
	return p, ok
}

// SummaryOptions frames the order message. Empty fields use the defaults.
type SummaryOptions struct {
	Greeting string
	Closing  string
}

func (o SummaryOptions) withDefaults() SummaryOptions {
	if o.Greeting == "" {
		o.Greeting = DefaultGreeting
	}
	if o.Closing == "" {
		o.Closing = DefaultClosing
	}
	return o
}

// FormatSummary renders the wishlist as an order message. Entries whose
// product is not in the catalog are skipped and add nothing to the total.
// The output depends only on its inputs.
func FormatSummary(entries domain.Wishlist, products ProductLookup, opts SummaryOptions) string {
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString(opts.Greeting)
	b.WriteString("\n\n")

	var total int64
	for _, e := range entries {
		line, ok := resolveLine(e, products)
		if !ok {
			continue
		}
		total += line.LineTotal

		b.WriteString("• ")
		b.WriteString(line.Title)
		if line.VariantTitle != "" {
			b.WriteString(" - ")
			b.WriteString(line.VariantTitle)
		}
		b.WriteString("\n  SKU: ")
		b.WriteString(line.SKU)
		b.WriteString("\n  Quantity: ")
		b.WriteString(itoa(line.Quantity))
		b.WriteString("\n  Price: $")
		b.WriteString(domain.FormatPrice(line.UnitPrice))
		b.WriteString("\n")
		if line.URL != "" {
			b.WriteString("  URL: ")
			b.WriteString(line.URL)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Total: $")
	b.WriteString(domain.FormatPrice(total))
	b.WriteString("\n\n")
	b.WriteString(opts.Closing)
	return b.String()
}

// MessengerLink builds the prefilled messaging link for text. Spaces are
// encoded as %20, not "+".
func MessengerLink(baseURL, text string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
