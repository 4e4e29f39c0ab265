package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

// DatasetteClient mirrors appended deal batches to a remote Datasette
// instance via the datasette-insert plugin. It only implements
// Appender: reads always come from the local store.
type DatasetteClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewDatasetteClient creates a new DatasetteClient instance
func NewDatasetteClient(baseURL, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AppendDeals sends the batch to the Datasette insert API.
func (c *DatasetteClient) AppendDeals(books []book.Book) error {
	if len(books) == 0 {
		return nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid Datasette base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "-/insert/tbrdeals/retailer_deal")

	rows := make([]map[string]any, 0, len(books))
	for _, b := range books {
		rows = append(rows, map[string]any{
			"retailer":      b.Retailer,
			"title":         b.Title,
			"authors":       b.Authors,
			"format":        string(b.Format),
			"list_price":    b.ListPrice,
			"current_price": b.CurrentPrice,
			"timepoint":     formatTimepoint(b.Timepoint),
			"deleted":       boolToInt(b.Deleted),
			"deal_id":       b.DealID,
		})
	}

	jsonData, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, u.String(), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("Datasette insert failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("Datasette API error: %v", errResp)
	}

	return nil
}
