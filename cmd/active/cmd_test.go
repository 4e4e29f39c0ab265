package active

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/datastore"
)

func captureOutput(t *testing.T) *string {
	t.Helper()
	var captured string
	orig := printOutput
	printOutput = func(s string) { captured = s }
	t.Cleanup(func() { printOutput = orig })
	return &captured
}

func seedStore(t *testing.T, dbfile string, deals ...book.Book) {
	t.Helper()
	store := datastore.NewSQLiteStore(dbfile)
	require.NoError(t, store.Connect())
	require.NoError(t, store.InitSchema())
	require.NoError(t, store.AppendDeals(deals))
	require.NoError(t, store.Close())
}

func TestActiveListsCurrentDeals(t *testing.T) {
	dbfile := filepath.Join(t.TempDir(), "deals.db")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedStore(t, dbfile,
		book.New("Chirp", "Dune", "Frank Herbert", book.FormatAudiobook, 20.00, 5.99, at),
	)

	output := captureOutput(t)
	require.NoError(t, ActiveWithParams(dbfile))
	assert.Contains(t, *output, "Dune")
}

func TestActiveExcludesTombstones(t *testing.T) {
	dbfile := filepath.Join(t.TempDir(), "deals.db")
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	deal := book.New("Chirp", "Dune", "Frank Herbert", book.FormatAudiobook, 20.00, 5.99, t1)
	tombstone := deal
	tombstone.Deleted = true
	tombstone.Timepoint = t2

	seedStore(t, dbfile, deal, tombstone)

	output := captureOutput(t)
	require.NoError(t, ActiveWithParams(dbfile))
	assert.Contains(t, *output, "No deals found.")
}

func TestLatestShowsOnlyMostRecentRun(t *testing.T) {
	dbfile := filepath.Join(t.TempDir(), "deals.db")
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	seedStore(t, dbfile,
		book.New("Chirp", "Dune", "Frank Herbert", book.FormatAudiobook, 20.00, 5.99, t1),
		book.New("Chirp", "Hyperion", "Dan Simmons", book.FormatAudiobook, 25.00, 4.99, t2),
	)

	output := captureOutput(t)
	require.NoError(t, LatestWithParams(dbfile))
	assert.Contains(t, *output, "Hyperion")
	assert.NotContains(t, *output, "Dune")
}

func TestLatestOnEmptyStore(t *testing.T) {
	dbfile := filepath.Join(t.TempDir(), "deals.db")

	output := captureOutput(t)
	require.NoError(t, LatestWithParams(dbfile))
	assert.Contains(t, *output, "No deals found.")
}
