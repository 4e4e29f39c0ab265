// Package retailer implements the price lookup clients for each
// tracked book retailer.
package retailer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

// Retailer resolves a (title, authors) query against one storefront.
type Retailer interface {
	// Name is the identifier used in config and in persisted deals.
	Name() string

	// Format is the edition type this retailer sells.
	Format() book.Format

	// SetAuth performs any login the storefront needs. Called once
	// per run, before any GetBook call. Idempotent.
	SetAuth(ctx context.Context) error

	// GetBook looks up one book. A book the retailer cannot
	// confidently match is returned as an Exists=false stub, not an
	// error; errors are reserved for transport failures. Safe to
	// call concurrently after SetAuth.
	GetBook(ctx context.Context, title, authors string, runTime time.Time) (book.Book, error)
}

var registry = map[string]func(locale string) Retailer{
	NameChirp:   func(locale string) Retailer { return newChirp(locale) },
	NameLibroFM: func(locale string) Retailer { return newLibroFM(locale) },
}

// New returns the retailer registered under name, configured for the
// given locale.
func New(name, locale string) (Retailer, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown retailer %q (known: %v)", name, Known())
	}
	return factory(locale), nil
}

// Known lists the registered retailer identifiers, sorted.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
