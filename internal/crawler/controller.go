// Package crawler runs incremental crawls: it reads the feed, skips releases
// the store already knows, and fetches, extracts and stores the rest.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
	"github.com/Adda-Baaj/wire-harvester/internal/extract"
	"github.com/Adda-Baaj/wire-harvester/internal/logger"
	"github.com/Adda-Baaj/wire-harvester/pkg/feed"
)

// Stage names the step an item reached.
type Stage string

const (
	StageLookup  Stage = "lookup"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageStore   Stage = "store"
	StageDone    Stage = "done"
)

var errPanic = errors.New("panic")

// FeedReader lists candidate release links.
type FeedReader interface {
	Read(ctx context.Context, feedURL string) ([]feed.Item, error)
}

// Extractor turns a fetched page into a record.
type Extractor interface {
	Assemble(raw domain.RawDocument) (domain.Record, error)
}

// Store is the seen-set and record sink.
type Store interface {
	AlreadySeen(ctx context.Context, url string) (bool, error)
	Add(ctx context.Context, rec domain.Record) error
	Flush(ctx context.Context) error
}

// Notifier announces records once they are flushed. It returns how many
// sinks accepted rec.
type Notifier interface {
	Notify(ctx context.Context, runID string, rec domain.Record) (int, error)
}

// ItemResult is the outcome of processing one URL. Err is nil on success,
// in which case Stage is StageDone and Record is set.
type ItemResult struct {
	URL    string
	Stage  Stage
	Record domain.Record
	Err    error
}

// OK reports whether the item was stored.
func (r ItemResult) OK() bool { return r.Err == nil }

// Class is a short error category for logs.
func (r ItemResult) Class() string {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, errPanic):
		return "panic"
	case errors.Is(r.Err, ErrBodyTooLarge):
		return "body_too_large"
	case r.Stage == StageFetch || r.Stage == StageLookup || r.Stage == StageStore:
		return string(r.Stage)
	}
	return extract.ErrorClass(r.Err)
}

// Summary reports one run.
type Summary struct {
	RunID     string
	Total     int
	New       int
	Stored    int
	Errors    int
	Published int // records delivered to at least one publisher
	Duration  time.Duration
}

// Controller drives feed → filter → fetch → extract → store → flush.
// It is not safe for concurrent runs.
type Controller struct {
	feed      FeedReader
	fetcher   Fetcher
	extractor Extractor
	store     Store
	notifier  Notifier
	log       logger.Logger
	newRunID  func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier publishes every flushed record through n.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(gen func() string) Option {
	return func(c *Controller) {
		if gen != nil {
			c.newRunID = gen
		}
	}
}

// NewController wires the collaborators of a crawl.
func NewController(fr FeedReader, f Fetcher, ex Extractor, st Store, log logger.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logger.NopLogger{}
	}
	c := &Controller{
		feed:      fr,
		fetcher:   f,
		extractor: ex,
		store:     st,
		log:       log,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs one crawl of feedURL. Per-item failures are logged and
// counted, never returned. The store is flushed exactly once, whatever
// happens; a flush failure is returned joined with any run-level error.
func (c *Controller) Run(ctx context.Context, feedURL string) (sum Summary, err error) {
	start := time.Now()
	sum.RunID = c.newRunID()
	var added []domain.Record

	c.log.InfoObj("crawl started", "crawl_start", map[string]any{
		"run_id":   sum.RunID,
		"feed_url": feedURL,
	})

	defer func() {
		// Flush even when the run was interrupted so added records persist.
		if ferr := c.store.Flush(context.WithoutCancel(ctx)); ferr != nil {
			c.log.ErrorObj("store flush failed", "flush_error", map[string]any{
				"run_id": sum.RunID,
				"error":  ferr.Error(),
			})
			err = errors.Join(err, fmt.Errorf("flush store: %w", ferr))
			sum.Stored = 0
		} else {
			sum.Published = c.publish(ctx, sum.RunID, added)
		}
		sum.Duration = time.Since(start)

		c.log.InfoObj("crawl finished", "crawl_summary", map[string]any{
			"run_id":      sum.RunID,
			"total":       sum.Total,
			"new":         sum.New,
			"stored":      sum.Stored,
			"errors":      sum.Errors,
			"published":   sum.Published,
			"duration_ms": sum.Duration.Milliseconds(),
		})
	}()

	items, err := c.feed.Read(ctx, feedURL)
	if err != nil {
		return sum, fmt.Errorf("read feed: %w", err)
	}
	sum.Total = len(items)

	pending, failed := c.filterSeen(ctx, items)
	sum.New = len(pending)
	for _, res := range failed {
		c.report(sum.RunID, res, feed.Item{})
		sum.Errors++
	}

	for _, item := range pending {
		if cerr := ctx.Err(); cerr != nil {
			return sum, cerr
		}
		res := c.process(ctx, item.Link)
		c.report(sum.RunID, res, item)
		if !res.OK() {
			sum.Errors++
			continue
		}
		sum.Stored++
		added = append(added, res.Record)
	}
	return sum, nil
}

// filterSeen drops empty links, links repeated within the feed and links
// the store already knows, keeping feed order. Lookup failures become
// failed results. Kept items carry the trimmed link.
func (c *Controller) filterSeen(ctx context.Context, items []feed.Item) ([]feed.Item, []ItemResult) {
	var (
		pending []feed.Item
		failed  []ItemResult
	)
	inFeed := make(map[string]struct{}, len(items))
	for _, it := range items {
		url := strings.TrimSpace(it.Link)
		if url == "" {
			continue
		}
		if _, dup := inFeed[url]; dup {
			continue
		}
		inFeed[url] = struct{}{}

		seen, err := c.store.AlreadySeen(ctx, url)
		if err != nil {
			failed = append(failed, ItemResult{URL: url, Stage: StageLookup, Err: err})
			continue
		}
		if seen {
			c.log.DebugObj("release already stored", "skip_seen", map[string]any{"url": url})
			continue
		}
		it.Link = url
		pending = append(pending, it)
	}
	return pending, failed
}

// process runs one URL through fetch, extract and store. A panic in any
// step is turned into a failed result for that URL.
func (c *Controller) process(ctx context.Context, url string) (res ItemResult) {
	res = ItemResult{URL: url, Stage: StageFetch}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", errPanic, r)
			res.Record = domain.Record{}
		}
	}()

	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		res.Err = err
		return res
	}
	if doc.FinalURL != "" && doc.FinalURL != url {
		c.log.WarnObj("release redirected", "redirect", map[string]any{
			"url":       url,
			"final_url": doc.FinalURL,
		})
	}

	res.Stage = StageExtract
	rec, err := c.extractor.Assemble(doc)
	if err != nil {
		res.Err = err
		return res
	}

	res.Stage = StageStore
	if err := c.store.Add(ctx, rec); err != nil {
		res.Err = err
		return res
	}

	res.Stage = StageDone
	res.Record = rec
	return res
}

func (c *Controller) report(runID string, res ItemResult, item feed.Item) {
	if res.OK() {
		fields := map[string]any{
			"run_id":     runID,
			"url":        res.URL,
			"title":      res.Record.Title,
			"location":   res.Record.Location,
			"feed_title": item.Title,
		}
		if !item.Published.IsZero() {
			fields["feed_published"] = item.Published.UTC().Format(time.RFC3339)
		}
		if len(item.Keywords) > 0 {
			fields["feed_keywords"] = strings.Join(item.Keywords, ",")
		}
		c.log.DebugObj("release stored", "item_stored", fields)
		return
	}
	c.log.ErrorObj("release failed", "item_error", map[string]any{
		"run_id": runID,
		"url":    res.URL,
		"stage":  string(res.Stage),
		"class":  res.Class(),
		"error":  res.Err.Error(),
	})
}

// publish announces flushed records and returns how many reached at least
// one publisher. Failures are logged by the notifier and do not fail the run.
func (c *Controller) publish(ctx context.Context, runID string, recs []domain.Record) int {
	if c.notifier == nil {
		return 0
	}
	n := 0
	for _, rec := range recs {
		if ctx.Err() != nil {
			break
		}
		if delivered, _ := c.notifier.Notify(ctx, runID, rec); delivered > 0 {
			n++
		}
	}
	return n
}
