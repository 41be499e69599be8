package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"time"
)

type googleNewsSitemap struct {
	URLs []googleNewsURL `xml:"url"`
}

type googleNewsURL struct {
	Loc  string           `xml:"loc"`
	News googleNewsDetail `xml:"news"`
}

type googleNewsDetail struct {
	PublicationDate string `xml:"publication_date"`
	Keywords        string `xml:"keywords"`
	Title           string `xml:"title"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

var errNotSitemap = errors.New("document is neither a news sitemap nor a sitemap index")

// readSitemap resolves raw into items, following sitemap indexes. visited
// guards against index cycles.
func (r *reader) readSitemap(ctx context.Context, url string, raw []byte, visited map[string]struct{}) ([]Item, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	var sitemap googleNewsSitemap
	if err := xml.Unmarshal(raw, &sitemap); err != nil {
		return nil, err
	}
	if len(sitemap.URLs) > 0 {
		return itemsFromSitemap(sitemap.URLs), nil
	}

	indexURLs, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, err
	}
	if len(indexURLs) == 0 {
		return nil, errNotSitemap
	}

	var all []Item
	for _, indexURL := range indexURLs {
		if _, seen := visited[indexURL]; seen {
			continue
		}
		nestedRaw, err := fetch(ctx, r.client, indexURL, r.headers)
		if err != nil {
			return nil, err
		}
		nested, err := r.readSitemap(ctx, indexURL, nestedRaw, visited)
		if err != nil && !errors.Is(err, errNotSitemap) {
			return nil, err
		}
		all = append(all, nested...)
	}
	return all, nil
}

// parseSitemapIndex returns the nested sitemap URLs of an index file.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

func itemsFromSitemap(urls []googleNewsURL) []Item {
	items := make([]Item, 0, len(urls))
	for _, entry := range urls {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		items = append(items, Item{
			Link:      loc,
			Title:     strings.TrimSpace(entry.News.Title),
			Published: parsePublicationDate(entry.News.PublicationDate),
			Keywords:  parseKeywords(entry.News.Keywords),
		})
	}
	return items
}

// parseKeywords splits a comma-separated keyword list.
func parseKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

func parsePublicationDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
