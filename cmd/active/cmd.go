// Package active implements the query commands over the stored deal
// history: the currently active deals and the most recent run's finds.
package active

import (
	"fmt"

	"github.com/lepinkainen/tbrdeals/cmd/find"
	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/datastore"
)

var printOutput = func(s string) { fmt.Println(s) }

// ActiveWithParams prints every deal that is currently active.
func ActiveWithParams(dbfile string) error {
	return query(dbfile, func(store *datastore.SQLiteStore) ([]book.Book, error) {
		return store.ActiveDeals()
	})
}

// LatestWithParams prints the deals written by the most recent run.
func LatestWithParams(dbfile string) error {
	return query(dbfile, func(store *datastore.SQLiteStore) ([]book.Book, error) {
		latest, err := store.LatestRunTime()
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, nil
		}
		return store.DealsFoundAt(*latest)
	})
}

func query(dbfile string, read func(*datastore.SQLiteStore) ([]book.Book, error)) error {
	store := datastore.NewSQLiteStore(dbfile)
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.InitSchema(); err != nil {
		return err
	}

	deals, err := read(store)
	if err != nil {
		return err
	}
	printOutput(find.RenderDeals(deals))
	return nil
}
