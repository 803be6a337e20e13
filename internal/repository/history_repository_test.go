package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/models"
)

type fakeDB struct {
	execQuery string
	execArgs  []any
	execErr   error

	copyTable pgx.Identifier
	copyCols  []string
	copyRows  int64
	copyErr   error

	queryArgs []any
	queryErr  error
}

func (f *fakeDB) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execQuery = query
	f.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	f.queryArgs = args
	return nil, f.queryErr
}

func (f *fakeDB) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	f.copyTable = table
	f.copyCols = columns
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	var n int64
	for src.Next() {
		n++
	}
	if f.copyRows >= 0 {
		return n + f.copyRows, nil
	}
	return n, nil
}

func sampleRecord() *models.HistoryRecord {
	clv := 0.041
	return &models.HistoryRecord{
		EvaluationID:  uuid.New(),
		SubjectID:     "user-1",
		Subject:       "Gerrit Cole",
		StatisticLine: "Strikeouts 6.5",
		Sport:         models.SportMLB,
		Confidence:    68.2,
		Decision:      models.DecisionStrongLean,
		CLV:           &clv,
		Timestamp:     time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestInsertAssignsIDAndBindsColumns(t *testing.T) {
	db := &fakeDB{}
	repo := NewPostgresHistoryRepository(db)
	rec := sampleRecord()

	require.NoError(t, repo.Insert(context.Background(), rec))

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Contains(t, db.execQuery, "INSERT INTO evaluation_history")
	require.Len(t, db.execArgs, len(historyColumns))
	assert.Equal(t, rec.ID, db.execArgs[0])
	assert.Equal(t, "MLB", db.execArgs[5])
	assert.Equal(t, "STRONG_LEAN", db.execArgs[7])
}

func TestInsertWrapsError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("connection refused")}
	repo := NewPostgresHistoryRepository(db)

	err := repo.Insert(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert history record")
}

func TestInsertBatchUsesCopy(t *testing.T) {
	db := &fakeDB{}
	repo := NewPostgresHistoryRepository(db)

	recs := []*models.HistoryRecord{sampleRecord(), sampleRecord()}
	require.NoError(t, repo.InsertBatch(context.Background(), recs))

	assert.Equal(t, pgx.Identifier{"evaluation_history"}, db.copyTable)
	assert.Equal(t, historyColumns, db.copyCols)
	for _, rec := range recs {
		assert.NotEqual(t, uuid.Nil, rec.ID)
	}
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	db := &fakeDB{}
	repo := NewPostgresHistoryRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.Nil(t, db.copyTable)
}

func TestInsertBatchCountMismatch(t *testing.T) {
	db := &fakeDB{copyRows: 1}
	repo := NewPostgresHistoryRepository(db)

	err := repo.InsertBatch(context.Background(), []*models.HistoryRecord{sampleRecord()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1")
}

func TestGetRecentBySubjectWrapsQueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("boom")}
	repo := NewPostgresHistoryRepository(db)

	_, err := repo.GetRecentBySubject(context.Background(), "user-1", 10)
	require.Error(t, err)
	assert.Equal(t, []any{"user-1", 10}, db.queryArgs)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}
