// Package pagination implements the infinite-reveal controller that decides
// how many of the filtered products a client may show.
package pagination

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is the number of products revealed per step.
const DefaultPageSize = 16

// maxReveal bounds client-supplied reveal counts.
const maxReveal = 10_000

// Controller is the reveal state machine. It holds how many results are
// revealed, the fixed page size, and the fingerprint of the query those
// results belong to. The zero value is not usable; call New or FromRequest.
type Controller struct {
	RevealCount int    `json:"reveal"`
	PageSize    int    `json:"page_size"`
	Fingerprint string `json:"fingerprint"`
}

// New returns a controller with one page revealed and no query memo.
func New(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{RevealCount: pageSize, PageSize: pageSize}
}

// Restore rebuilds a controller from state a client echoed back. Counts below
// one page are raised to one page.
func Restore(pageSize, reveal int, fingerprint string) *Controller {
	c := New(pageSize)
	if reveal > c.RevealCount {
		c.RevealCount = min(reveal, maxReveal)
	}
	c.Fingerprint = fingerprint
	return c
}

// FromRequest restores the controller from the "reveal" and "fingerprint"
// query parameters. Malformed values are ignored.
func FromRequest(r *http.Request, pageSize int) *Controller {
	q := r.URL.Query()
	reveal := 0
	if v, err := strconv.Atoi(q.Get("reveal")); err == nil && v > 0 {
		reveal = v
	}
	return Restore(pageSize, reveal, q.Get("fingerprint"))
}

// Sync records the current query fingerprint. When it differs from the last
// one seen, the reveal count drops back to a single page and Sync reports true.
func (c *Controller) Sync(fingerprint string) bool {
	if fingerprint == c.Fingerprint {
		return false
	}
	c.Fingerprint = fingerprint
	c.RevealCount = c.PageSize
	return true
}

// RevealMore grows the reveal count by one page without passing total.
func (c *Controller) RevealMore(total int) {
	c.RevealCount = min(c.RevealCount+c.PageSize, max(total, 0))
}

// Settle clamps the reveal count into [min(PageSize, total), total].
func (c *Controller) Settle(total int) {
	total = max(total, 0)
	c.RevealCount = max(min(c.RevealCount, total), min(c.PageSize, total))
}

// Window returns the end index of the revealed prefix of a total-length list.
func (c *Controller) Window(total int) int {
	return max(min(c.RevealCount, total), 0)
}

// HasMore reports whether results beyond the revealed prefix exist.
func (c *Controller) HasMore(total int) bool {
	return c.RevealCount < total
}

// Visible returns the revealed prefix of items.
func Visible[T any](items []T, c *Controller) []T {
	return items[:c.Window(len(items))]
}
