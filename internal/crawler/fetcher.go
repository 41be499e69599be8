package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
	"github.com/Adda-Baaj/wire-harvester/internal/logger"
	"github.com/Adda-Baaj/wire-harvester/pkg/httpclient"
)

const (
	// MaxPageBytes bounds a release page. Real releases with large figure
	// tables stay well under it.
	MaxPageBytes    = 16 << 20 // 16 MiB
	maxSnippetBytes = 1024
)

// ErrBodyTooLarge is returned for pages over MaxPageBytes. Pages are never
// truncated since extraction needs the whole document.
var ErrBodyTooLarge = errors.New("page body too large")

// Fetcher retrieves the markup of one release page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (domain.RawDocument, error)
}

type httpFetcher struct {
	client  httpclient.Client
	headers map[string]string
	log     logger.Logger
}

// NewHTTPFetcher returns a Fetcher over client. Pass a caching client to
// serve repeated pages from disk.
func NewHTTPFetcher(client httpclient.Client, headers map[string]string, log logger.Logger) Fetcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &httpFetcher{client: client, headers: headers, log: log}
}

// Fetch returns the page at url. Anything but a 200 is an error, as is a
// body over MaxPageBytes.
func (f *httpFetcher) Fetch(ctx context.Context, url string) (domain.RawDocument, error) {
	resp, err := f.client.Get(ctx, url, f.headers)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > maxSnippetBytes {
			snippet = snippet[:maxSnippetBytes]
		}
		return domain.RawDocument{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > MaxPageBytes {
		return domain.RawDocument{}, fmt.Errorf("%w: %d bytes, limit %d", ErrBodyTooLarge, len(body), MaxPageBytes)
	}

	f.log.DebugObj("release fetched", "fetch_done", map[string]any{
		"url":    url,
		"bytes":  len(body),
		"cached": resp.Cached(),
	})

	return domain.RawDocument{URL: url, FinalURL: resp.FinalURL(), HTML: body}, nil
}
