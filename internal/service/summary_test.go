package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helloivanco/fanrc/internal/domain"
)

func TestFormatSummary_SingleVariantItem(t *testing.T) {
	products := NewProductIndex(summaryProducts())
	entries := domain.Wishlist{{ProductID: 1, VariantID: ptr(10), Quantity: 2}}

	got := FormatSummary(entries, products, SummaryOptions{})

	want := DefaultGreeting + "\n\n" +
		"• Widget - Default Title\n" +
		"  SKU: W-1\n" +
		"  Quantity: 2\n" +
		"  Price: $5.00\n" +
		"  URL: https://fanrc.example/products/widget\n" +
		"\n" +
		"Total: $10.00\n\n" +
		DefaultClosing
	assert.Equal(t, want, got)
}

func TestFormatSummary_SkipsDanglingEntries(t *testing.T) {
	products := NewProductIndex(summaryProducts())
	entries := domain.Wishlist{
		{ProductID: 99, Quantity: 5},
		{ProductID: 2, VariantID: ptr(21), Quantity: 1},
	}

	got := FormatSummary(entries, products, SummaryOptions{})

	want := DefaultGreeting + "\n\n" +
		"• Shock Set - Rear\n" +
		"  SKU: SS-R\n" +
		"  Quantity: 1\n" +
		"  Price: $24.99\n" +
		"\n" +
		"Total: $24.99\n\n" +
		DefaultClosing
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Quantity: 5")
}

func TestFormatSummary_UnknownVariantUsesDefault(t *testing.T) {
	products := NewProductIndex(summaryProducts())
	entries := domain.Wishlist{{ProductID: 2, VariantID: ptr(777), Quantity: 3}}

	got := FormatSummary(entries, products, SummaryOptions{})

	assert.Contains(t, got, "• Shock Set\n  SKU: SS-F\n  Quantity: 3\n  Price: $19.99\n")
	assert.Contains(t, got, "Total: $59.97\n")
}

func TestFormatSummary_EmptyWishlist(t *testing.T) {
	got := FormatSummary(nil, NewProductIndex(nil), SummaryOptions{})
	assert.Equal(t, DefaultGreeting+"\n\nTotal: $0.00\n\n"+DefaultClosing, got)
}

func TestFormatSummary_CustomFraming(t *testing.T) {
	got := FormatSummary(nil, NewProductIndex(nil), SummaryOptions{Greeting: "Hello", Closing: "Bye"})
	assert.Equal(t, "Hello\n\nTotal: $0.00\n\nBye", got)
}

func TestFormatSummary_Deterministic(t *testing.T) {
	products := NewProductIndex(summaryProducts())
	entries := domain.Wishlist{
		{ProductID: 2, VariantID: ptr(20), Quantity: 1},
		{ProductID: 1, Quantity: 4},
	}

	first := FormatSummary(entries, products, SummaryOptions{})
	for range 5 {
		assert.Equal(t, first, FormatSummary(entries, products, SummaryOptions{}))
	}
	assert.Less(t, strings.Index(first, "Shock Set"), strings.Index(first, "Widget"), "entry order preserved")
}

func TestMessengerLink(t *testing.T) {
	tests := []struct {
		name string
		base string
		text string
		want string
	}{
		{"spaces", "https://m.me/fanrc", "Hi there", "https://m.me/fanrc?text=Hi%20there"},
		{"newlines and symbols", "https://m.me/fanrc", "a\nb $5.00 & c", "https://m.me/fanrc?text=a%0Ab%20%245.00%20%26%20c"},
		{"existing query", "https://m.me/fanrc?ref=shop", "x", "https://m.me/fanrc?ref=shop&text=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessengerLink(tt.base, tt.text))
		})
	}
}
