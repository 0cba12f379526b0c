package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher performs the HTTP retrieval of feed documents. One Fetcher is
// shared by all sources so they reuse a single http.Client.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch retrieves the raw feed document for the given category of the
// source. Non-200 responses are returned as *StatusError so callers can
// distinguish protocol failures from transport failures.
func (s *Source) Fetch(ctx context.Context, category string) ([]byte, error) {
	url := s.FeedURL(category)
	if url == "" {
		return nil, fmt.Errorf("source %q has no feed for category %q", s.name, category)
	}
	return s.fetcher.fetch(ctx, url)
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
