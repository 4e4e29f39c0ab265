// Package book defines the price observation entity shared by the
// retailer clients, the reconciliation engine and the deal store.
package book

import (
	"fmt"
	"math"
	"time"
)

// Format identifies the edition type a retailer sells.
type Format string

const (
	FormatEbook         Format = "Ebook"
	FormatAudiobook     Format = "Audiobook"
	FormatNotApplicable Format = "N/A"
)

// Book is a single retailer's reported price for one book at one point
// in time. Instances are built fresh every run and never mutated after
// being staged for persistence, except when the reconciler tombstones
// them.
type Book struct {
	Retailer     string
	Title        string
	Authors      string
	Format       Format
	ListPrice    float64
	CurrentPrice float64
	Timepoint    time.Time

	// Deleted marks a tombstone row: the deal was active on the
	// previous run and was not re-observed on this one.
	Deleted bool

	// DealID is the identity key (title, authors, retailer, format).
	// It is computed once at construction and never recomputed.
	DealID string

	// Exists is false when the retailer could not find the book at
	// all. It is transient and never persisted.
	Exists bool

	// CoverURL is reported by some retailers alongside pricing.
	// Transient, used only for thumbnail downloads.
	CoverURL string
}

// New builds an observation for a book the retailer found. Prices are
// rounded to cents on construction.
func New(retailer, title, authors string, format Format, listPrice, currentPrice float64, timepoint time.Time) Book {
	b := Book{
		Retailer:     retailer,
		Title:        title,
		Authors:      authors,
		Format:       format,
		ListPrice:    roundCents(listPrice),
		CurrentPrice: roundCents(currentPrice),
		Timepoint:    timepoint,
		Exists:       true,
	}
	b.DealID = dealID(title, authors, retailer, format)
	return b
}

// NewMiss builds the zero-priced stub recorded when a retailer has no
// confident match for the query.
func NewMiss(retailer, title, authors string, format Format, timepoint time.Time) Book {
	b := New(retailer, title, authors, format, 0, 0, timepoint)
	b.Exists = false
	return b
}

func dealID(title, authors, retailer string, format Format) string {
	return fmt.Sprintf("%s__%s__%s__%s", title, authors, retailer, format)
}

// TitleID groups the same book edition across retailers; the list
// price normalizer keys on it.
func (b Book) TitleID() string {
	return fmt.Sprintf("%s__%s__%s", b.Title, b.Authors, b.Format)
}

// Discount returns the percentage saved off the list price, rounded to
// the nearest whole percent. A zero current price yields 0 so callers
// never divide by zero.
func (b Book) Discount() int {
	if b.CurrentPrice == 0 {
		return 0
	}
	return int(math.Round((b.ListPrice/b.CurrentPrice - 1) * 100))
}

// PriceString formats a price the way deals are shown to the user.
func PriceString(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

func (b Book) String() string {
	title := b.Title
	if len(title) > 75 {
		title = title[:75] + "..."
	}
	return fmt.Sprintf("%s %s by %s - %s - %d%% Off at %s",
		title, b.Format, b.Authors, PriceString(b.CurrentPrice), b.Discount(), b.Retailer)
}

func roundCents(price float64) float64 {
	return math.Round(price*100) / 100
}
