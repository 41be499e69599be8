package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/wire-harvester/internal/logger"
)

const (
	cacheFileName = "responses.db"
	cacheBucket   = "responses"
)

// Cache stores successful responses in a bbolt file under a cache directory.
// Entries never expire; staleness is not tracked.
type Cache struct {
	db *bolt.DB
}

type cacheEntry struct {
	FinalURL  string    `json:"final_url"`
	Status    int       `json:"status"`
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// OpenCache opens (creating if needed) the response cache in dir.
func OpenCache(dir string) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, cacheFileName), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cacheBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the cache file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached response for url, if any.
func (c *Cache) Get(url string) (*Response, bool, error) {
	var entry *cacheEntry
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(cacheBucket)).Get([]byte(url))
		if raw == nil {
			return nil
		}
		entry = &cacheEntry{}
		return json.Unmarshal(raw, entry)
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if entry == nil {
		return nil, false, nil
	}
	return &Response{
		status:   entry.Status,
		body:     entry.Body,
		finalURL: entry.FinalURL,
		cached:   true,
	}, true, nil
}

// Put stores resp under url.
func (c *Cache) Put(url string, resp *Response) error {
	raw, err := json.Marshal(cacheEntry{
		FinalURL:  resp.FinalURL(),
		Status:    resp.StatusCode(),
		Body:      resp.Body(),
		FetchedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cacheBucket)).Put([]byte(url), raw)
	})
}

// CachingClient serves GETs from a Cache and fills it with 200 responses.
type CachingClient struct {
	next  Client
	cache *Cache
	log   logger.Logger
}

// NewCachingClient wraps next with cache.
func NewCachingClient(next Client, cache *Cache, log logger.Logger) *CachingClient {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &CachingClient{next: next, cache: cache, log: log}
}

func (c *CachingClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, ok, err := c.cache.Get(url)
	if err != nil {
		c.log.WarnObj("response cache read failed", "cache_read_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	} else if ok {
		c.log.DebugObj("response served from cache", "cache_hit", map[string]any{"url": url})
		return resp, nil
	}

	resp, err = c.next.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusOK {
		if err := c.cache.Put(url, resp); err != nil {
			c.log.WarnObj("response cache write failed", "cache_write_error", map[string]any{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
	return resp, nil
}
