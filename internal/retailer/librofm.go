package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lepinkainen/tbrdeals/internal/book"
	"github.com/lepinkainen/tbrdeals/internal/config"
	"github.com/lepinkainen/tbrdeals/internal/errors"
	"github.com/lepinkainen/tbrdeals/internal/ratelimit"
)

// NameLibroFM is the config identifier for the Libro.fm store.
const NameLibroFM = "Libro FM"

const (
	libroDefaultURL = "https://libro.fm"
	libroUserAgent  = "okhttp/3.14.9"
	libroTokenFile  = "libro_fm.json"
)

// LibroFM looks up audiobook prices via Libro.fm's mobile API. The API
// requires an OAuth password-grant token, cached on disk between runs.
type LibroFM struct {
	locale    string
	tokenPath string
	token     string
	client    *resty.Client
	limiter   *ratelimit.Limiter
}

func newLibroFM(locale string) *LibroFM {
	return &LibroFM{
		locale:    locale,
		tokenPath: filepath.Join(config.DataDir, libroTokenFile),
		client: resty.New().
			SetBaseURL(libroDefaultURL).
			SetHeader("User-Agent", libroUserAgent).
			SetTimeout(15 * time.Second),
		limiter: ratelimit.New(NameLibroFM, 5),
	}
}

func (l *LibroFM) Name() string {
	return NameLibroFM
}

func (l *LibroFM) Format() book.Format {
	return book.FormatAudiobook
}

type libroToken struct {
	AccessToken string `json:"access_token"`
}

// SetAuth loads the cached access token, falling back to a password
// grant with the configured credentials. Failing both skips this
// retailer for the run.
func (l *LibroFM) SetAuth(ctx context.Context) error {
	if l.token != "" {
		return nil
	}

	if data, err := os.ReadFile(l.tokenPath); err == nil {
		var cached libroToken
		if err := json.Unmarshal(data, &cached); err == nil && cached.AccessToken != "" {
			l.token = cached.AccessToken
			l.client.SetAuthToken(l.token)
			return nil
		}
	}

	if config.LibroFMUsername == "" || config.LibroFMPassword == "" {
		return errors.NewAuthenticationError(NameLibroFM,
			fmt.Errorf("no cached token and no credentials configured (librofm.username / librofm.password)"))
	}

	var token libroToken
	resp, err := l.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"grant_type": "password",
			"username":   config.LibroFMUsername,
			"password":   config.LibroFMPassword,
		}).
		SetResult(&token).
		Post("/oauth/token")
	if err != nil {
		return errors.NewAuthenticationError(NameLibroFM, err)
	}
	if resp.IsError() || token.AccessToken == "" {
		return errors.NewAuthenticationError(NameLibroFM,
			fmt.Errorf("token request returned status %s", resp.Status()))
	}

	l.token = token.AccessToken
	l.client.SetAuthToken(l.token)

	if data, err := json.Marshal(token); err == nil {
		if err := os.WriteFile(l.tokenPath, data, 0600); err != nil {
			// Not fatal; the token just won't survive this run.
			fmt.Fprintf(os.Stderr, "warning: could not cache Libro.fm token: %v\n", err)
		}
	}
	return nil
}

type libroAudiobook struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	CoverURL    string   `json:"cover_url"`
	RetailPrice float64  `json:"retail_price"`
	SalePrice   float64  `json:"sale_price"`
}

type libroSearchResponse struct {
	Audiobooks []libroAudiobook `json:"audiobooks"`
}

func (l *LibroFM) GetBook(ctx context.Context, title, authors string, runTime time.Time) (book.Book, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return book.Book{}, err
	}

	var result libroSearchResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("q", title).
		SetResult(&result).
		Get("/api/v10/search/audiobooks")
	if err != nil {
		return book.Book{}, fmt.Errorf("Libro.fm request failed: %w", err)
	}
	if resp.StatusCode() == 429 {
		return book.Book{}, errors.NewRateLimitError(NameLibroFM, resp.Status())
	}
	if resp.StatusCode() == 401 {
		// The cached token went stale. Drop it so the next run does a
		// fresh password grant, and report an auth failure so the
		// caller skips this retailer instead of reading every lookup
		// as a miss.
		l.token = ""
		_ = os.Remove(l.tokenPath)
		return book.Book{}, errors.NewAuthenticationError(NameLibroFM,
			fmt.Errorf("search rejected the access token (status %s)", resp.Status()))
	}
	if resp.IsError() {
		return book.Book{}, fmt.Errorf("Libro.fm search returned status %s", resp.Status())
	}

	wantAuthors := book.NormalizeAuthors(authors)
	for _, candidate := range result.Audiobooks {
		candidateAuthors := strings.Join(candidate.Authors, ", ")
		if candidate.Title != title || book.NormalizeAuthors(candidateAuthors) != wantAuthors {
			continue
		}

		// Libro.fm often reports no retail price at all; the list
		// price normalizer fills it in from other retailers.
		found := book.New(
			NameLibroFM,
			title,
			authors,
			book.FormatAudiobook,
			candidate.RetailPrice,
			candidate.SalePrice,
			runTime,
		)
		found.CoverURL = candidate.CoverURL
		return found, nil
	}

	return book.NewMiss(NameLibroFM, title, authors, book.FormatAudiobook, runTime), nil
}
