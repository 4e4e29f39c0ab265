// Package deals holds the deal qualification rules and the
// reconciliation engine that diffs a run's observations against the
// stored active-deal state.
package deals

import "github.com/lepinkainen/tbrdeals/internal/book"

// NormalizeListPrices propagates the lowest positive list price seen
// for a title across every retailer carrying it. Some retailers never
// report a real list price (zero, or equal to the sale price); taking
// max(currentPrice, groupMin) keeps Discount() non-negative and keeps
// the displayed "was" price at least as high as the sale price.
//
// Mutates the slice in place. Must run before discount filtering.
func NormalizeListPrices(books []book.Book) {
	groups := make(map[string][]int)
	minList := make(map[string]float64)

	for i, b := range books {
		id := b.TitleID()
		groups[id] = append(groups[id], i)
		if b.ListPrice > 0 {
			if current, ok := minList[id]; !ok || b.ListPrice < current {
				minList[id] = b.ListPrice
			}
		}
	}

	for id, indexes := range groups {
		groupMin := minList[id] // zero when no member reported one
		for _, i := range indexes {
			if books[i].CurrentPrice > groupMin {
				books[i].ListPrice = books[i].CurrentPrice
			} else {
				books[i].ListPrice = groupMin
			}
		}
	}
}
