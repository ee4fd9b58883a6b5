package domain

import (
	"slices"
	"strings"
)

// QueryState is the browse query: a free-text term and the selected
// product types. An empty selection means no category restriction.
type QueryState struct {
	Term       string
	Categories []string
}

// Fingerprint combines the raw term with the sorted selected categories.
// Parts are not escaped, so a term or category holding "|" or "," can
// collide with another query; the reveal reset is then skipped.
func (q QueryState) Fingerprint() string {
	cats := slices.Clone(q.Categories)
	slices.Sort(cats)
	return q.Term + "|" + strings.Join(cats, ",")
}
