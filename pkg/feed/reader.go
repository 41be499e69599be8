// Package feed reads candidate release links from an RSS/Atom feed or a
// Google News sitemap.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/wire-harvester/pkg/httpclient"
)

// Item is one candidate entry, in feed order.
type Item struct {
	Link      string
	Title     string
	Published time.Time
	Keywords  []string
}

// Reader reads all entries of a feed in one call. Duplicates are kept.
type Reader interface {
	Read(ctx context.Context, feedURL string) ([]Item, error)
}

type reader struct {
	client  httpclient.Client
	headers map[string]string
}

// NewReader builds a Reader fetching with client. The client should not be a
// caching one, or the feed would never change between runs.
func NewReader(client httpclient.Client, headers map[string]string) Reader {
	return &reader{client: client, headers: headers}
}

// Read fetches feedURL and returns its entries. RSS and Atom are tried first;
// documents gofeed cannot parse are read as Google News sitemaps (following
// sitemap indexes).
func (r *reader) Read(ctx context.Context, feedURL string) ([]Item, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("feed url is empty")
	}

	raw, err := fetch(ctx, r.client, feedURL, r.headers)
	if err != nil {
		return nil, err
	}

	items, feedErr := parseSyndication(raw)
	if feedErr == nil {
		return items, nil
	}

	items, err = r.readSitemap(ctx, feedURL, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", feedURL, errors.Join(feedErr, err))
	}
	return items, nil
}

// parseSyndication decodes RSS, Atom or JSON feeds.
func parseSyndication(raw []byte) ([]Item, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		link := strings.TrimSpace(entry.Link)
		if link == "" {
			continue
		}
		item := Item{
			Link:     link,
			Title:    strings.TrimSpace(entry.Title),
			Keywords: entry.Categories,
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// fetch retrieves url and fails on any non-200 status.
func fetch(ctx context.Context, client httpclient.Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d body: %s", url, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
