package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the user-visible history row written after an evaluation.
type HistoryRecord struct {
	ID            uuid.UUID `json:"id"`
	EvaluationID  uuid.UUID `json:"evaluationId"`
	SubjectID     string    `json:"subjectId"`
	Subject       string    `json:"subject"`
	StatisticLine string    `json:"statisticLine"`
	Sport         Sport     `json:"sport"`
	Confidence    float64   `json:"confidence"`
	Decision      Decision  `json:"decision"`
	CLV           *float64  `json:"clv,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
