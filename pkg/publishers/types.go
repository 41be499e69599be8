package publishers

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"strings"
	"time"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

// Publisher delivers release events to one downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the subset of the harvester logger publishers use.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// Event announces a newly stored press release. The body text is left out
// to keep messages under queue size limits.
type Event struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Language    string    `json:"language"`
	Topics      []string  `json:"topics,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// NewEvent builds the event for rec. The id is derived from the URL so
// redeliveries can be deduplicated downstream.
func NewEvent(runID, source string, rec domain.Record) Event {
	var topics []string
	if rec.Topics != "" {
		topics = strings.Split(rec.Topics, ",")
	}
	return Event{
		ID:          hashURL(rec.URL),
		RunID:       runID,
		Source:      source,
		URL:         rec.URL,
		Title:       rec.Title,
		Company:     rec.Company,
		Location:    rec.Location,
		Language:    rec.Language,
		Topics:      topics,
		PublishedAt: time.UnixMilli(rec.Date).UTC(),
	}
}

func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}
