// Package csvutil provides a generic CSV processor for library export
// files. Exports identify columns by header name, not position, so the
// processor hands each parser a header-aware record.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Record is one CSV row with access to fields by column header.
type Record struct {
	header map[string]int
	fields []string
}

// Get returns the value of the named column, or "" when the column is
// absent from the file. Header lookup is case-insensitive.
func (r Record) Get(column string) string {
	idx, ok := r.header[strings.ToLower(column)]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// Has reports whether the file declares the named column at all.
func (r Record) Has(column string) bool {
	_, ok := r.header[strings.ToLower(column)]
	return ok
}

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// ProcessCSV reads a CSV file and parses each record into type T.
// The parser converts a header-aware Record into the target type.
func ProcessCSV[T any](filename string, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("CSV file %s is empty or cannot be read", filename)
	}

	reader := csv.NewReader(csvFile)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var items []T

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading record", "file", filename, "error", err)
			continue
		}

		item, err := parser(Record{header: header, fields: fields})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "file", filename, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
