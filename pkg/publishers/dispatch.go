package publishers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

// Dispatcher fans one record out to every configured publisher.
type Dispatcher struct {
	source string
	pubs   []Publisher
	log    Logger
}

// NewDispatcher builds a Dispatcher tagging events with source.
func NewDispatcher(source string, pubs []Publisher, log Logger) *Dispatcher {
	return &Dispatcher{source: source, pubs: pubs, log: ensureLogger(log)}
}

// Notify publishes rec, tagged with the crawl run it came from, to all
// publishers and returns how many accepted it. Every publisher is attempted;
// failures are joined. Publishers that skip the event count as neither.
func (d *Dispatcher) Notify(ctx context.Context, runID string, rec domain.Record) (int, error) {
	if d == nil || len(d.pubs) == 0 {
		return 0, nil
	}

	evt := NewEvent(runID, d.source, rec)
	var (
		delivered int
		errs      []error
	)
	for _, pub := range d.pubs {
		err := pub.Publish(ctx, evt)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrSkipped):
		default:
			d.log.WarnObj("publisher failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"url":          rec.URL,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", pub.ID(), err))
		}
	}
	return delivered, errors.Join(errs...)
}
