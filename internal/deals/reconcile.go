package deals

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

// Store is the slice of the deal store the reconciler needs: the
// current active snapshot and a single all-or-nothing append.
type Store interface {
	// ActiveDeals returns the most recent non-deleted row per deal ID.
	ActiveDeals() ([]book.Book, error)

	// AppendDeals appends a batch of rows atomically.
	AppendDeals(books []book.Book) error
}

// Reconcile diffs this run's qualifying deals against the stored
// active set and appends the minimal row set describing what changed:
// brand-new deals, price changes, and tombstones for active deals the
// run did not re-observe.
//
// Running twice with identical observations writes nothing the second
// time, and historical rows are never touched: a vanished deal gets a
// deleted=true row stamped with runTime, and a later reappearance gets
// a fresh row, leaving the gap visible in history.
func Reconcile(store Store, runTime time.Time, newDeals []book.Book) error {
	active, err := store.ActiveDeals()
	if err != nil {
		return fmt.Errorf("failed to read active deals: %w", err)
	}

	activeMap := make(map[string]book.Book, len(active))
	for _, deal := range active {
		activeMap[deal.DealID] = deal
	}

	var staged []book.Book
	for _, deal := range dedupe(newDeals) {
		previous, wasActive := activeMap[deal.DealID]
		if !wasActive {
			staged = append(staged, deal)
			continue
		}

		if deal.CurrentPrice != previous.CurrentPrice {
			staged = append(staged, deal)
		}
		// Same price needs no new row; either way the deal is
		// accounted for.
		delete(activeMap, deal.DealID)
	}

	// Whatever is left in activeMap was not re-observed this run:
	// price rose, sale ended, or the book vanished. Tombstone it.
	for _, deal := range activeMap {
		slog.Info("Deal no longer active", "deal", deal.String())
		deal.Deleted = true
		deal.Timepoint = runTime
		staged = append(staged, deal)
	}

	if len(staged) == 0 {
		return nil
	}

	if err := store.AppendDeals(staged); err != nil {
		return fmt.Errorf("failed to append deal batch: %w", err)
	}
	return nil
}

// dedupe keeps one entry per deal ID. True duplicates within one run
// share identical fields by construction, so last-wins is fine.
func dedupe(deals []book.Book) []book.Book {
	seen := make(map[string]int, len(deals))
	var unique []book.Book
	for _, deal := range deals {
		if i, ok := seen[deal.DealID]; ok {
			unique[i] = deal
			continue
		}
		seen[deal.DealID] = len(unique)
		unique = append(unique, deal)
	}
	return unique
}
