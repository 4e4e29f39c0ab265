package deals

import "github.com/lepinkainen/tbrdeals/internal/book"

// Qualifies reports whether a normalized observation meets the user's
// thresholds. A zero current price never qualifies: it guards the
// discount division and treats free or unpriced listings as noise.
func Qualifies(b book.Book, maxPrice float64, minDiscount int) bool {
	if b.CurrentPrice == 0 {
		return false
	}
	return b.CurrentPrice <= maxPrice && b.Discount() >= minDiscount
}

// Filter returns the observations that qualify as deals under the
// given thresholds. Applied after list price normalization, before
// reconciliation.
func Filter(books []book.Book, maxPrice float64, minDiscount int) []book.Book {
	var qualified []book.Book
	for _, b := range books {
		if Qualifies(b, maxPrice, minDiscount) {
			qualified = append(qualified, b)
		}
	}
	return qualified
}
