// Package feed downloads and parses news syndication feeds.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	apperrors "github.com/peacewatch/peacewatch/internal/errors"
)

// maxBodySize caps how much of a feed document is read.
const maxBodySize = 5 * 1024 * 1024

// Item is one entry within a feed
type Item struct {
	Title       string
	Link        string
	Description string
}

// HTTPClient is the interface for performing HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses feeds. Some sources reject bare HTTP clients,
// so requests carry browser-like headers.
type Fetcher struct {
	client HTTPClient
	parser *gofeed.Parser
}

// New creates a Fetcher with the given HTTP client
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client: client,
		parser: gofeed.NewParser(),
	}
}

// NewWithTimeout creates a Fetcher backed by a default client with an
// explicit per-fetch timeout, bounding the duration of one cycle.
func NewWithTimeout(timeout time.Duration) *Fetcher {
	return New(&http.Client{Timeout: timeout})
}

// Fetch downloads and parses a feed from the given URL. A document that
// parses but contains no items yields an empty slice, not an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.FetchError{URL: url, Err: &statusError{code: resp.StatusCode}}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.FetchError{URL: url, Err: err}
	}

	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, apperrors.ParseError{URL: url, Err: err}
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, Item{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
		})
	}
	return items, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
