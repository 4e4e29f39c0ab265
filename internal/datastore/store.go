// Package datastore persists the append-only deal history and serves
// the read projections over it.
package datastore

import (
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

// Appender accepts atomic batches of deal rows. The SQLite store and
// the remote Datasette mirror both implement it.
type Appender interface {
	// AppendDeals appends a batch of rows, all-or-nothing.
	AppendDeals(books []book.Book) error
}

// Store defines the interface for the local deal history store.
type Store interface {
	Appender

	// Connect establishes a connection to the data store.
	Connect() error

	// InitSchema creates the deal history table if it doesn't exist.
	InitSchema() error

	// ActiveDeals returns, per deal ID, the single most recent row,
	// filtered to rows that are not tombstones.
	ActiveDeals() ([]book.Book, error)

	// DealsFoundAt returns every row written by the run with the
	// given timepoint.
	DealsFoundAt(timepoint time.Time) ([]book.Book, error)

	// LatestRunTime returns the greatest timepoint in the store, or
	// nil when no run has completed yet.
	LatestRunTime() (*time.Time, error)

	// Close closes the connection to the data store.
	Close() error
}
