// Package fetch drives batch price lookups against one retailer,
// retrying unmatched titles with their subtitle stripped.
package fetch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/errors"
	"github.com/lepinkainen/tbrdeals/internal/library"
	"github.com/lepinkainen/tbrdeals/internal/retailer"
)

// maxConcurrent bounds in-flight lookups per retailer so we stay
// polite with third-party APIs.
const maxConcurrent = 10

// Books fetches prices for every library entry from one retailer.
//
// Entries the retailer cannot match on the first pass are retried with
// the text before the first colon of their title (subtitle-stripping
// heuristic). The loop ends when no unmatched title contains a colon
// or a retry pass recovers nothing. Lookup errors on single entries
// are logged and treated as misses; they never abort the batch. The
// exception is an authentication failure: the retailer is rejecting
// every request, so Books returns the error and no results rather
// than reporting the whole library as not found.
func Books(ctx context.Context, r retailer.Retailer, entries []library.Entry, runTime time.Time) ([]book.Book, error) {
	var found []book.Book

	pending := entries
	for attempt := 0; len(pending) > 0; attempt++ {
		matched, missed, err := batch(ctx, r, pending, runTime)
		if err != nil {
			return nil, err
		}
		found = append(found, matched...)

		if attempt > 0 && len(matched) == 0 {
			// The retry pass made no progress; give up.
			reportMisses(r.Name(), missed)
			break
		}

		retries := colonRetries(missed)
		if len(retries) == 0 {
			reportMisses(r.Name(), missed)
			break
		}

		slog.Info("Retrying unmatched titles with alternate title",
			"retailer", r.Name(), "count", len(retries))
		pending = retries
	}

	return found, nil
}

// batch looks up all entries with bounded concurrency and partitions
// the results into matches and misses. An authentication error from
// any lookup aborts the batch.
func batch(ctx context.Context, r retailer.Retailer, entries []library.Entry, runTime time.Time) (matched, missed []book.Book, err error) {
	results := make([]book.Book, len(entries))
	authErrs := make([]error, len(entries))

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, entry := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			b, err := r.GetBook(ctx, entry.Title, entry.Authors, runTime)
			if err != nil {
				if errors.IsAuthenticationError(err) {
					authErrs[i] = err
					return
				}
				slog.Warn("Lookup failed, treating as not found",
					"retailer", r.Name(), "title", entry.Title, "error", err)
				b = book.NewMiss(r.Name(), entry.Title, entry.Authors, r.Format(), runTime)
			}
			results[i] = b
		}()
	}
	wg.Wait()

	for _, err := range authErrs {
		if err != nil {
			return nil, nil, err
		}
	}

	for _, b := range results {
		if b.Exists {
			matched = append(matched, b)
		} else {
			missed = append(missed, b)
		}
	}
	return matched, missed, nil
}

// colonRetries derives the next pass from the unmatched remainder:
// every missed title containing a colon, queried again as the text
// before the first colon.
func colonRetries(missed []book.Book) []library.Entry {
	var retries []library.Entry
	for _, b := range missed {
		if !strings.Contains(b.Title, ":") {
			continue
		}
		title, _, _ := strings.Cut(b.Title, ":")
		retries = append(retries, library.Entry{
			Title:   strings.TrimSpace(title),
			Authors: b.Authors,
		})
	}
	return retries
}

func reportMisses(retailerName string, missed []book.Book) {
	for _, b := range missed {
		slog.Warn("Book not found", "retailer", retailerName, "title", b.Title, "authors", b.Authors)
	}
}
