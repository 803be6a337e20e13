// Package sink holds the write-only destinations every completed evaluation
// is dispatched to: the analytics endpoint and the history table.
package sink

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/yourusername/prop-evaluator/internal/access"
	"github.com/yourusername/prop-evaluator/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// subjectID returns the caller id carried by ctx, or "anonymous".
func subjectID(ctx context.Context) string {
	if s, ok := access.SubjectFrom(ctx); ok && !s.Anonymous() {
		return s.ID
	}
	return "anonymous"
}

// oddsAtPick returns the current price of the side that was picked, when
// known. It is the same price CLV is measured against.
func oddsAtPick(r *models.EvaluationResult) *int {
	if r.Pick == "" {
		return nil
	}
	_, current := r.Odds.SidePrices(r.Pick)
	return current
}

func clvPercent(r *models.EvaluationResult) *float64 {
	if r.CLV == nil {
		return nil
	}
	v := r.CLV.Percent
	return &v
}
