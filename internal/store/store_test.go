package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "releases.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleRecord(url string) domain.Record {
	return domain.Record{
		URL:      url,
		Date:     1319428800000,
		Title:    "Caterpillar Reports Record Quarter",
		Company:  "Example Corp.",
		Text:     "EAST PEORIA, Ill., Oct. 24, 2011 /PRNewswire/ -- ...",
		Topics:   "Manufacturing,Earnings",
		Location: "EAST PEORIA, Ill.",
		Language: "en_us",
	}
}

func TestAddThenFlush(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	seen, err := s.AlreadySeen(ctx, "http://a/1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))

	seen, err = s.AlreadySeen(ctx, "http://a/1")
	require.NoError(t, err)
	assert.True(t, seen, "queued records count as seen")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing written before flush")

	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 0, s.Pending())

	got, err := s.Get(ctx, "http://a/1")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord("http://a/1"), got)

	seen, err = s.AlreadySeen(ctx, "http://a/1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestAddIgnoresQueuedDuplicates(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))
	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))
	assert.Equal(t, 1, s.Pending())
}

func TestAddRejectsEmptyURL(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Error(t, s.Add(context.Background(), domain.Record{}))
}

func TestFlushIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))
	require.NoError(t, s.Flush(ctx))

	changed := sampleRecord("http://a/1")
	changed.Title = "Rewritten"
	require.NoError(t, s.Add(ctx, changed))
	require.NoError(t, s.Flush(ctx))

	got, err := s.Get(ctx, "http://a/1")
	require.NoError(t, err)
	assert.Equal(t, "Caterpillar Reports Record Quarter", got.Title)
}

func TestFlushEmptyIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NoError(t, s.Flush(context.Background()))
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.AlreadySeen(ctx, "http://a/1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get(context.Background(), "http://nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
