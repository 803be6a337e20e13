package sink

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/repository"
)

// History records user-visible evaluation history.
type History struct {
	repo repository.HistoryRepository
}

// NewHistory creates the history sink.
func NewHistory(repo repository.HistoryRepository) *History {
	return &History{repo: repo}
}

// Name implements evaluator.Sink.
func (h *History) Name() string { return "history" }

// Record builds the history row for a result.
func (h *History) Record(ctx context.Context, r *models.EvaluationResult) *models.HistoryRecord {
	return &models.HistoryRecord{
		EvaluationID:  r.EvaluationID,
		SubjectID:     subjectID(ctx),
		Subject:       r.SubjectName,
		StatisticLine: r.StatisticLine,
		Sport:         r.Sport,
		Confidence:    r.Confidence,
		Decision:      r.Decision,
		CLV:           clvPercent(r),
		Timestamp:     r.EvaluatedAt,
	}
}

// Write implements evaluator.Sink.
func (h *History) Write(ctx context.Context, r *models.EvaluationResult) error {
	if err := h.repo.Insert(ctx, h.Record(ctx, r)); err != nil {
		return fmt.Errorf("history write failed: %w", err)
	}
	return nil
}
