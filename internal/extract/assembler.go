package extract

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
	"github.com/Adda-Baaj/wire-harvester/internal/logger"
)

// Assembler turns one fetched release page into a domain.Record.
type Assembler struct {
	loc *time.Location
	now func() time.Time
	log logger.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLocation sets the timezone dateline dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock overrides the wall clock used when a release has no usable dateline.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAssembler builds an Assembler; dates default to local midnight.
func NewAssembler(log logger.Logger, opts ...Option) *Assembler {
	if log == nil {
		log = logger.NopLogger{}
	}
	a := &Assembler{loc: time.Local, now: time.Now, log: log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble parses raw and builds its record. Structural failures are
// returned as errors; a missing or unusable dateline falls back to the
// current time with an empty location.
func (a *Assembler) Assemble(raw domain.RawDocument) (domain.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.HTML))
	if err != nil {
		return domain.Record{}, fmt.Errorf("parse html: %w", err)
	}

	content, err := ExtractContent(doc, raw.BaseURL())
	if err != nil {
		return domain.Record{}, fmt.Errorf("extract content: %w", err)
	}

	rec := domain.Record{
		URL:      raw.URL,
		Title:    content.Title,
		Company:  ParseSource(content.Text),
		Text:     content.Text,
		Topics:   content.Topics,
		Language: content.Language,
	}

	rec.Date, rec.Location = a.resolveDate(raw.URL, content.Text)
	return rec, nil
}

// resolveDate applies the dateline fallback policy and returns epoch millis and location.
func (a *Assembler) resolveDate(url, text string) (int64, string) {
	dl, err := ParseDateline(text)
	if err != nil {
		evt := "dateline_missing"
		if !errors.Is(err, ErrNoDateline) {
			evt = "dateline_unparsed"
		}
		a.log.DebugObj("no usable dateline, using current time", evt, map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return a.now().UnixMilli(), ""
	}

	date, ok := calendarDate(dl, a.loc)
	if !ok {
		a.log.WarnObj("dateline date out of range, using current time", "dateline_invalid_date", map[string]any{
			"url":   url,
			"year":  dl.Year,
			"month": dl.Month,
			"day":   dl.Day,
		})
		return a.now().UnixMilli(), dl.Location
	}
	return date.UnixMilli(), dl.Location
}

// calendarDate returns midnight of the dateline's date, rejecting days the
// month does not have instead of letting time.Date roll them over.
func calendarDate(dl domain.Dateline, loc *time.Location) (time.Time, bool) {
	if dl.Month < 1 || dl.Month > 12 || dl.Day < 1 {
		return time.Time{}, false
	}
	t := time.Date(dl.Year, time.Month(dl.Month), dl.Day, 0, 0, 0, 0, loc)
	if t.Day() != dl.Day || int(t.Month()) != dl.Month {
		return time.Time{}, false
	}
	return t, true
}
