package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertPattern = `INSERT OR IGNORE INTO press_releases`

func TestFlushRollsBackAndKeepsQueueOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := newStore(db)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))
	require.NoError(t, s.Add(ctx, sampleRecord("http://a/2")))

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(insertPattern)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = s.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://a/2")
	assert.Equal(t, 2, s.Pending(), "queue survives a failed flush")

	seen, err := s.AlreadySeen(ctx, "http://a/1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlushReportsCommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := newStore(db)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, sampleRecord("http://a/1")))

	mock.ExpectBegin()
	mock.ExpectPrepare(insertPattern).ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err = s.Flush(ctx)
	assert.ErrorContains(t, err, "commit flush")
	assert.Equal(t, 1, s.Pending())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlreadySeenSurfacesQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := newStore(db)

	mock.ExpectQuery(`SELECT 1 FROM press_releases`).
		WithArgs("http://a/1").
		WillReturnError(errors.New("no such table"))

	_, err = s.AlreadySeen(context.Background(), "http://a/1")
	assert.ErrorContains(t, err, "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
