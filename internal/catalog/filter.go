// Package catalog holds the in-memory product catalog: loading, validation,
// hot reload, filtering and category grouping.
package catalog

import (
	"strings"

	"github.com/helloivanco/fanrc/internal/domain"
)

// Filter returns the products matching q, in their original order.
//
// A product matches when the term is empty or is a case-insensitive substring
// of its title, plain-text description, product type or any tag, and when the
// selection is empty or contains its product type verbatim.
func Filter(products []domain.Product, q domain.QueryState) []domain.Product {
	term := strings.ToLower(q.Term)

	var cats map[string]struct{}
	if len(q.Categories) > 0 {
		cats = make(map[string]struct{}, len(q.Categories))
		for _, c := range q.Categories {
			cats[c] = struct{}{}
		}
	}

	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if matchesCategory(&products[i], cats) && matchesTerm(&products[i], term) {
			out = append(out, products[i])
		}
	}
	return out
}

func matchesCategory(p *domain.Product, cats map[string]struct{}) bool {
	if cats == nil {
		return true
	}
	_, ok := cats[p.ProductType]
	return ok
}

// matchesTerm expects term to be lowercased already.
func matchesTerm(p *domain.Product, term string) bool {
	if term == "" {
		return true
	}
	if containsFold(p.Title, term) || containsFold(p.DescriptionText, term) || containsFold(p.ProductType, term) {
		return true
	}
	for _, tag := range p.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
