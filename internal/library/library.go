// Package library loads the user's to-be-read list from StoryGraph
// (or Goodreads) library export CSVs.
package library

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/tbrdeals/internal/csvutil"
)

// Entry is one book from the user's reading list.
type Entry struct {
	Title   string
	Authors string
}

// toRead is the shelf value marking books that participate in deal
// tracking. StoryGraph and Goodreads both use it.
const toRead = "to-read"

type exportRow struct {
	entry  Entry
	status string
}

func parseExportRow(r csvutil.Record) (exportRow, error) {
	title := strings.TrimSpace(r.Get("Title"))
	if title == "" {
		return exportRow{}, fmt.Errorf("row has no title")
	}

	authors := strings.TrimSpace(r.Get("Authors"))
	if authors == "" {
		// Goodreads calls the column "Author".
		authors = strings.TrimSpace(r.Get("Author"))
	}

	status := strings.TrimSpace(r.Get("Read Status"))
	if status == "" {
		status = strings.TrimSpace(r.Get("Exclusive Shelf"))
	}

	return exportRow{
		entry:  Entry{Title: title, Authors: authors},
		status: strings.ToLower(status),
	}, nil
}

// Load reads every export file, keeps only to-read entries and dedupes
// books that appear in more than one export. A missing or unreadable
// file is a hard error; the run must not silently track a partial
// library.
func Load(paths []string) ([]Entry, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no library export paths configured")
	}

	seen := make(map[string]bool)
	var entries []Entry

	for _, path := range paths {
		rows, err := csvutil.ProcessCSV(path, parseExportRow, csvutil.ProcessorOptions{SkipInvalid: true})
		if err != nil {
			return nil, fmt.Errorf("failed to load library export %s: %w", path, err)
		}

		kept := 0
		for _, row := range rows {
			if row.status != toRead {
				continue
			}
			key := row.entry.Title + "__" + row.entry.Authors
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, row.entry)
			kept++
		}
		slog.Info("Loaded library export", "file", path, "toRead", kept, "total", len(rows))
	}

	return entries, nil
}
