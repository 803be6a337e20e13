package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/prop-evaluator/internal/models"
)

var historyColumns = []string{
	"id", "evaluation_id", "subject_id", "subject", "statistic_line",
	"sport", "confidence", "decision", "clv", "created_at",
}

// PostgresHistoryRepository implements HistoryRepository for PostgreSQL
type PostgresHistoryRepository struct {
	db dbtx
}

// NewPostgresHistoryRepository creates a new history repository
func NewPostgresHistoryRepository(db dbtx) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func historyValues(rec *models.HistoryRecord) []any {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return []any{
		rec.ID, rec.EvaluationID, rec.SubjectID, rec.Subject, rec.StatisticLine,
		string(rec.Sport), rec.Confidence, string(rec.Decision), rec.CLV, rec.Timestamp,
	}
}

// Insert inserts a single history record
func (r *PostgresHistoryRepository) Insert(ctx context.Context, rec *models.HistoryRecord) error {
	query := `
		INSERT INTO evaluation_history (id, evaluation_id, subject_id, subject, statistic_line, sport, confidence, decision, clv, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if _, err := r.db.Exec(ctx, query, historyValues(rec)...); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// InsertBatch inserts multiple history records using COPY
func (r *PostgresHistoryRepository) InsertBatch(ctx context.Context, recs []*models.HistoryRecord) error {
	if len(recs) == 0 {
		return nil
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = historyValues(rec)
	}

	count, err := r.db.CopyFrom(ctx, pgx.Identifier{"evaluation_history"}, historyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert history: %w", err)
	}
	if count != int64(len(recs)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(recs))
	}
	return nil
}

// GetRecentBySubject returns a subject's most recent evaluations, newest first
func (r *PostgresHistoryRepository) GetRecentBySubject(ctx context.Context, subjectID string, limit int) ([]*models.HistoryRecord, error) {
	query := `
		SELECT id, evaluation_id, subject_id, subject, statistic_line, sport, confidence, decision, clv, created_at
		FROM evaluation_history
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []*models.HistoryRecord
	for rows.Next() {
		var (
			rec      models.HistoryRecord
			sport    string
			decision string
		)
		if err := rows.Scan(&rec.ID, &rec.EvaluationID, &rec.SubjectID, &rec.Subject, &rec.StatisticLine,
			&sport, &rec.Confidence, &decision, &rec.CLV, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Sport = models.Sport(sport)
		rec.Decision = models.Decision(decision)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return out, nil
}
