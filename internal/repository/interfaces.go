package repository

import (
	"context"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// HistoryRepository defines the interface for evaluation history access
type HistoryRepository interface {
	Insert(ctx context.Context, rec *models.HistoryRecord) error
	InsertBatch(ctx context.Context, recs []*models.HistoryRecord) error
	GetRecentBySubject(ctx context.Context, subjectID string, limit int) ([]*models.HistoryRecord, error)
}
