// Package find implements the deal-finding run: load the library
// exports, query every tracked retailer, normalize and filter the
// observations, reconcile them against the stored deal history and
// print what the run found.
package find

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/config"
	"github.com/lepinkainen/tbrdeals/internal/datastore"
	"github.com/lepinkainen/tbrdeals/internal/deals"
	"github.com/lepinkainen/tbrdeals/internal/errors"
	"github.com/lepinkainen/tbrdeals/internal/fetch"
	"github.com/lepinkainen/tbrdeals/internal/fileutil"
	"github.com/lepinkainen/tbrdeals/internal/library"
	"github.com/lepinkainen/tbrdeals/internal/retailer"
)

var (
	newRetailer = retailer.New
	printOutput = func(s string) { fmt.Println(s) }
	nowFunc     = time.Now
)

// FindWithParams runs one full deal-finding pass against dbfile.
func FindWithParams(dbfile string, downloadCovers bool) error {
	config.SetRunTime(nowFunc())
	ctx := context.Background()

	entries, err := library.Load(config.LibraryExports)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no to-read entries in library exports %v", config.LibraryExports)
	}
	slog.Info("Loaded library exports", "entries", len(entries), "files", len(config.LibraryExports))

	observations, fetched, skipped := gatherObservations(ctx, entries)
	if len(fetched) == 0 {
		return fmt.Errorf("no tracked retailer could be queried")
	}

	deals.NormalizeListPrices(observations)
	qualified := deals.Filter(observations, config.MaxPrice, config.MinDiscount)
	slog.Info("Filtered observations", "observed", len(observations), "qualified", len(qualified))

	store := datastore.NewSQLiteStore(dbfile)
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.InitSchema(); err != nil {
		return err
	}

	if err := deals.Reconcile(reconcileTarget(store, skipped), config.RunTime, qualified); err != nil {
		return err
	}

	if downloadCovers {
		fetchCovers(ctx, qualified)
	}

	found, err := store.DealsFoundAt(config.RunTime)
	if err != nil {
		return err
	}
	printOutput(RenderDeals(found))
	return nil
}

// gatherObservations queries each tracked retailer in turn. A retailer
// whose login fails, or that starts rejecting requests mid-batch, is
// skipped and the run continues with the rest. Returns the
// observations plus the names of the retailers that were queried and
// of the tracked retailers that were skipped.
func gatherObservations(ctx context.Context, entries []library.Entry) ([]book.Book, map[string]bool, map[string]bool) {
	var observations []book.Book
	fetched := make(map[string]bool)
	skipped := make(map[string]bool)

	for _, name := range config.TrackedRetailers {
		r, err := newRetailer(name, config.Locale)
		if err != nil {
			slog.Warn("Skipping unknown retailer", "retailer", name, "error", err)
			skipped[name] = true
			continue
		}

		if err := r.SetAuth(ctx); err != nil {
			if errors.IsAuthenticationError(err) {
				slog.Warn("Authentication failed, skipping retailer", "retailer", name, "error", err)
			} else {
				slog.Warn("Login failed, skipping retailer", "retailer", name, "error", err)
			}
			skipped[r.Name()] = true
			continue
		}

		slog.Info("Getting latest prices", "retailer", name, "entries", len(entries))
		books, err := fetch.Books(ctx, r, entries, config.RunTime)
		if err != nil {
			slog.Warn("Retailer rejected the batch, skipping", "retailer", name, "error", err)
			skipped[r.Name()] = true
			continue
		}
		observations = append(observations, books...)
		fetched[r.Name()] = true
	}

	return observations, fetched, skipped
}

// reconcileTarget wires the persistence side of the run: the local
// store, minus the retailers this run had to skip, plus an optional
// Datasette mirror.
//
// Hiding the skipped retailers matters for partial runs: a skipped
// retailer contributes no observations, and without the scope its
// active deals would all be tombstoned as vanished. Retailers removed
// from the config entirely stay visible, so their stored deals are
// tombstoned like any other deal the run no longer observes.
func reconcileTarget(store *datastore.SQLiteStore, skipped map[string]bool) deals.Store {
	var base deals.Store = store
	if config.DatasetteEnabled {
		base = datastore.NewMirroredStore(store,
			datastore.NewDatasetteClient(config.DatasetteRemote, config.DatasetteToken))
	}
	return &scopedStore{store: base, skipped: skipped}
}

// scopedStore hides the active deals of the retailers a run skipped.
type scopedStore struct {
	store   deals.Store
	skipped map[string]bool
}

func (s *scopedStore) ActiveDeals() ([]book.Book, error) {
	all, err := s.store.ActiveDeals()
	if err != nil {
		return nil, err
	}

	var scoped []book.Book
	for _, b := range all {
		if !s.skipped[b.Retailer] {
			scoped = append(scoped, b)
		}
	}
	return scoped, nil
}

func (s *scopedStore) AppendDeals(books []book.Book) error {
	return s.store.AppendDeals(books)
}

// fetchCovers downloads thumbnail covers for the qualifying deals.
// Best effort: a failed download is logged and never fails the run.
func fetchCovers(ctx context.Context, qualified []book.Book) {
	for _, b := range qualified {
		if b.CoverURL == "" {
			continue
		}
		if _, err := fileutil.DownloadCover(ctx, b.CoverURL, config.CoverDir, b.Title); err != nil {
			slog.Warn("Cover download failed", "title", b.Title, "error", err)
		}
	}
}
