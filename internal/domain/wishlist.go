package domain

import (
	"strconv"
	"strings"
)

// Entry is one wishlist line. The JSON shape matches the blob the browser
// storefront keeps under the fanrc_wishlist storage key.
type Entry struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Key identifies a wishlist entry. "No variant" is a distinct key from any
// variant id, including the default variant's.
type Key struct {
	ProductID  int64
	VariantID  int64
	HasVariant bool
}

// NewKey builds a key from an optional variant id.
func NewKey(productID int64, variantID *int64) Key {
	k := Key{ProductID: productID}
	if variantID != nil {
		k.VariantID = *variantID
		k.HasVariant = true
	}
	return k
}

// Key returns the identity of the entry.
func (e Entry) Key() Key {
	return NewKey(e.ProductID, e.VariantID)
}

// Variant returns the key's variant id or nil.
func (k Key) Variant() *int64 {
	if !k.HasVariant {
		return nil
	}
	v := k.VariantID
	return &v
}

func (k Key) String() string {
	if !k.HasVariant {
		return strconv.FormatInt(k.ProductID, 10)
	}
	return strconv.FormatInt(k.ProductID, 10) + ":" + strconv.FormatInt(k.VariantID, 10)
}

// Wishlist is an ordered list of entries with unique keys. Mutating methods
// return a new slice and never modify the receiver's backing array.
type Wishlist []Entry

// Index returns the position of the entry with key k, or -1.
func (w Wishlist) Index(k Key) int {
	for i := range w {
		if w[i].Key() == k {
			return i
		}
	}
	return -1
}

// Contains reports whether an entry with key k exists.
func (w Wishlist) Contains(k Key) bool {
	return w.Index(k) >= 0
}

// Add merges quantity into the entry with key k, or appends a new entry.
func (w Wishlist) Add(k Key, quantity int) Wishlist {
	out := w.clone()
	if i := out.Index(k); i >= 0 {
		out[i].Quantity += quantity
		return out
	}
	return append(out, Entry{ProductID: k.ProductID, VariantID: k.Variant(), Quantity: quantity})
}

// Remove drops the entry with key k. Absent keys are a no-op.
func (w Wishlist) Remove(k Key) Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, e := range w {
		if e.Key() != k {
			out = append(out, e)
		}
	}
	return out
}

// SetQuantity replaces the quantity of the entry with key k. A quantity of
// zero or less removes the entry. The bool reports whether k was present.
func (w Wishlist) SetQuantity(k Key, quantity int) (Wishlist, bool) {
	i := w.Index(k)
	if i < 0 {
		return w.clone(), false
	}
	if quantity <= 0 {
		return w.Remove(k), true
	}
	out := w.clone()
	out[i].Quantity = quantity
	return out, true
}

// ItemCount is the sum of all quantities.
func (w Wishlist) ItemCount() int {
	n := 0
	for _, e := range w {
		n += e.Quantity
	}
	return n
}

// Sanitize repairs a wishlist decoded from storage: entries with a
// non-positive product id or quantity are dropped and duplicate keys are
// merged into the first occurrence.
func (w Wishlist) Sanitize() Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, e := range w {
		if e.ProductID <= 0 || e.Quantity < 1 {
			continue
		}
		if i := out.Index(e.Key()); i >= 0 {
			out[i].Quantity += e.Quantity
			continue
		}
		out = append(out, Entry{ProductID: e.ProductID, VariantID: e.Key().Variant(), Quantity: e.Quantity})
	}
	return out
}

// Fingerprint is a canonical string of the wishlist contents, used to detect
// changes between two reads.
func (w Wishlist) Fingerprint() string {
	var b strings.Builder
	for _, e := range w {
		b.WriteString(e.Key().String())
		b.WriteByte('x')
		b.WriteString(strconv.Itoa(e.Quantity))
		b.WriteByte(';')
	}
	return b.String()
}

func (w Wishlist) clone() Wishlist {
	out := make(Wishlist, len(w))
	copy(out, w)
	return out
}
