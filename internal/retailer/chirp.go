package retailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/errors"
	"github.com/lepinkainen/tbrdeals/internal/ratelimit"
)

// NameChirp is the config identifier for the Chirp audiobook store.
const NameChirp = "Chirp"

// The .com endpoint serves every locale; regional URLs just redirect.
const chirpDefaultURL = "https://www.chirpbooks.com/api/graphql"

const chirpSearchQuery = `fragment audiobookFields on Audiobook{id coverUrl displayAuthors displayTitle url} ` +
	`fragment productFields on Product{discountPrice id isFreeListing listingPrice purchaseUrl savingsPercent showListingPrice} ` +
	`query AudiobookSearch($query:String!,$promotionFilter:String,$filter:String,$page:Int,$pageSize:Int)` +
	`{audiobooks(query:$query,promotionFilter:$promotionFilter,filter:$filter,page:$page,pageSize:$pageSize)` +
	`{totalCount objects(page:$page,pageSize:$pageSize){... on Audiobook{...audiobookFields currentProduct{...productFields}}}}}`

// Chirp looks up audiobook prices via Chirp's GraphQL search API. No
// login is required for price lookups.
type Chirp struct {
	url     string
	locale  string
	client  *http.Client
	limiter *ratelimit.Limiter
}

func newChirp(locale string) *Chirp {
	return &Chirp{
		url:    chirpDefaultURL,
		locale: locale,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: ratelimit.New(NameChirp, 5),
	}
}

func (c *Chirp) Name() string {
	return NameChirp
}

func (c *Chirp) Format() book.Format {
	return book.FormatAudiobook
}

// SetAuth is a no-op; Chirp's search API is public.
func (c *Chirp) SetAuth(ctx context.Context) error {
	return nil
}

type chirpProduct struct {
	ListingPrice  string `json:"listingPrice"`
	DiscountPrice string `json:"discountPrice"`
	IsFreeListing bool   `json:"isFreeListing"`
}

type chirpAudiobook struct {
	DisplayTitle   string        `json:"displayTitle"`
	DisplayAuthors string        `json:"displayAuthors"`
	CoverURL       string        `json:"coverUrl"`
	CurrentProduct *chirpProduct `json:"currentProduct"`
}

type chirpSearchResponse struct {
	Data struct {
		Audiobooks struct {
			Objects []chirpAudiobook `json:"objects"`
		} `json:"audiobooks"`
	} `json:"data"`
}

func (c *Chirp) GetBook(ctx context.Context, title, authors string, runTime time.Time) (book.Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return book.Book{}, err
	}

	payload := map[string]any{
		"query": chirpSearchQuery,
		"variables": map[string]any{
			"query":           title,
			"filter":          "all",
			"page":            1,
			"promotionFilter": "default",
		},
		"operationName": "AudiobookSearch",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to marshal Chirp query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to create Chirp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return book.Book{}, fmt.Errorf("Chirp request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return book.Book{}, errors.NewRateLimitError(NameChirp, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return book.Book{}, fmt.Errorf("Chirp search returned status %s", resp.Status)
	}

	var result chirpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return book.Book{}, fmt.Errorf("failed to decode Chirp response: %w", err)
	}

	wantAuthors := book.NormalizeAuthors(authors)
	for _, candidate := range result.Data.Audiobooks.Objects {
		if candidate.CurrentProduct == nil {
			continue
		}

		// Exact title plus normalized author equality. Anything
		// looser has matched the wrong edition before.
		if candidate.DisplayTitle != title || book.NormalizeAuthors(candidate.DisplayAuthors) != wantAuthors {
			continue
		}

		found := book.New(
			NameChirp,
			title,
			authors,
			book.FormatAudiobook,
			book.ParsePrice(candidate.CurrentProduct.ListingPrice),
			book.ParsePrice(candidate.CurrentProduct.DiscountPrice),
			runTime,
		)
		found.CoverURL = candidate.CoverURL
		return found, nil
	}

	return book.NewMiss(NameChirp, title, authors, book.FormatAudiobook, runTime), nil
}
