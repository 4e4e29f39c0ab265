package datastore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

func TestDatasetteAppendDeals(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string][]map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewDatasetteClient(server.URL, "secret-token")
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deal := book.New("Chirp", "Dune", "Frank Herbert", book.FormatAudiobook, 20.00, 5.99, t1)

	require.NoError(t, client.AppendDeals([]book.Book{deal}))

	assert.Equal(t, "/-/insert/tbrdeals/retailer_deal", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	rows := gotPayload["rows"]
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["title"])
	assert.Equal(t, "2025-06-01T12:00:00Z", rows[0]["timepoint"])
	_, hasExists := rows[0]["exists"]
	assert.False(t, hasExists, "the transient exists flag is never persisted")
}

func TestDatasetteAppendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok": false}`, http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := NewDatasetteClient(server.URL, "")
	deal := book.New("Chirp", "Dune", "Frank Herbert", book.FormatAudiobook, 20.00, 5.99, time.Now())

	assert.Error(t, client.AppendDeals([]book.Book{deal}))
}

func TestDatasetteAppendEmptyBatchSkipsRequest(t *testing.T) {
	client := NewDatasetteClient("http://unused.invalid", "")
	assert.NoError(t, client.AppendDeals(nil))
}
