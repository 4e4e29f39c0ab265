package deals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

func obs(retailer, title string, listPrice, currentPrice float64) book.Book {
	return book.New(retailer, title, "Some Author", book.FormatAudiobook, listPrice, currentPrice, time.Unix(1700000000, 0))
}

func TestNormalizePropagatesListPriceAcrossRetailers(t *testing.T) {
	// Two retailers report no list price; the third knows it's 12.00.
	// 12.00 bounds every current price here, so all three end at 12.00.
	books := []book.Book{
		obs("A", "Dune", 0, 9.00),
		obs("B", "Dune", 12.00, 9.50),
		obs("C", "Dune", 0, 8.75),
	}

	NormalizeListPrices(books)

	for _, b := range books {
		assert.Equal(t, 12.00, b.ListPrice, "retailer %s", b.Retailer)
	}
}

func TestNormalizeFallsBackToCurrentPrice(t *testing.T) {
	books := []book.Book{
		obs("A", "Dune", 0, 9.00),
		obs("B", "Dune", 0, 9.50),
	}

	NormalizeListPrices(books)

	assert.Equal(t, 9.00, books[0].ListPrice)
	assert.Equal(t, 9.50, books[1].ListPrice)
}

func TestNormalizeCurrentPriceWins(t *testing.T) {
	// A current price above the group list price still floors the
	// list price at the current price, so Discount() stays >= 0.
	books := []book.Book{
		obs("A", "Dune", 8.00, 10.00),
		obs("B", "Dune", 8.00, 7.00),
	}

	NormalizeListPrices(books)

	assert.Equal(t, 10.00, books[0].ListPrice)
	assert.Equal(t, 8.00, books[1].ListPrice)
	assert.GreaterOrEqual(t, books[0].Discount(), 0)
}

func TestNormalizeKeepsTitleGroupsSeparate(t *testing.T) {
	books := []book.Book{
		obs("A", "Dune", 20.00, 5.00),
		obs("A", "Hyperion", 0, 6.00),
	}

	NormalizeListPrices(books)

	assert.Equal(t, 20.00, books[0].ListPrice)
	assert.Equal(t, 6.00, books[1].ListPrice, "Hyperion must not inherit Dune's list price")
}

func TestFilterThresholds(t *testing.T) {
	tests := []struct {
		name         string
		listPrice    float64
		currentPrice float64
		want         bool
	}{
		{"qualifies", 13.50, 6.00, true},
		{"discount exactly at threshold", 13.50, 10.00, true}, // 35%
		{"discount just below threshold", 13.40, 10.00, false}, // 34%
		{"price above max", 30.00, 11.00, false},
		{"price exactly at max", 20.00, 10.00, true},
		{"zero current price never qualifies", 13.50, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := obs("A", "Dune", tt.listPrice, tt.currentPrice)
			assert.Equal(t, tt.want, Qualifies(b, 10.00, 35))
		})
	}
}

func TestFilterKeepsOnlyQualifying(t *testing.T) {
	books := []book.Book{
		obs("A", "Dune", 13.50, 6.00),
		obs("A", "Hyperion", 10.00, 9.50),
	}

	got := Filter(books, 8.00, 35)

	assert.Len(t, got, 1)
	assert.Equal(t, "Dune", got[0].Title)
}
