// Package catalog is the client for the external book-metadata search provider
// (Google Books volumes API). It is rate limited, retries transient failures and
// can cache results in redis.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// Book is one search result as consumed by the shelf service.
// Authors and ThumbnailURL may be empty.
type Book struct {
	ExternalID   string   `json:"external_id"`
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

// Cache stores search results by normalized query.
type Cache interface {
	Get(ctx context.Context, query string) ([]Book, bool, error)
	Set(ctx context.Context, query string, books []Book) error
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
	MaxRetries    uint64
	HTTPClient    *http.Client
	Cache         Cache
	Logger        *logger.Logger
}

// Client searches the catalog provider.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	maxRetries  uint64
	cache       Cache
	log         *logger.Logger
}

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	ratePerSecond := opts.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		maxRetries:  maxRetries,
		cache:       opts.Cache,
		log:         log.With("component", "catalog"),
	}
}

// Search returns the provider's results for a free-text query.
// An empty query is a validation error and no request is made.
func (c *Client) Search(ctx context.Context, query string) ([]Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("search query is required")
	}
	key := strings.ToLower(query)

	if c.cache != nil {
		books, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("catalog cache read failed", "error", err)
		} else if ok {
			return books, nil
		}
	}

	var result volumesResponse
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	err := backoff.Retry(func() error {
		return c.fetch(ctx, query, &result)
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Error("catalog search failed", "query", query, "error", err)
		return nil, domainerrors.Persistence("catalog search failed", err)
	}

	books := result.toBooks()
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, books); err != nil {
			c.log.Warn("catalog cache write failed", "error", err)
		}
	}
	return books, nil
}

func (c *Client) fetch(ctx context.Context, query string, out *volumesResponse) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return backoff.Permanent(err)
	}

	params := url.Values{}
	params.Set("q", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("fetch volumes: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.log.Debug("catalog transient failure", "status", resp.StatusCode)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return backoff.Permanent(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			ImageLinks struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (r volumesResponse) toBooks() []Book {
	books := make([]Book, 0, len(r.Items))
	for _, item := range r.Items {
		thumb := item.VolumeInfo.ImageLinks.Thumbnail
		if thumb == "" {
			thumb = item.VolumeInfo.ImageLinks.SmallThumbnail
		}
		books = append(books, Book{
			ExternalID:   item.ID,
			Title:        item.VolumeInfo.Title,
			Authors:      item.VolumeInfo.Authors,
			ThumbnailURL: thumb,
		})
	}
	return books
}
