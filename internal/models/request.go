package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// EvaluationRequest is the inbound proposition to evaluate.
type EvaluationRequest struct {
	Sport          string       `json:"sport" validate:"required"`
	SubjectName    string       `json:"subjectName" validate:"required"`
	StatisticLine  string       `json:"statisticLine" validate:"required"`
	Opponent       string       `json:"opponent,omitempty"`
	SubjectID      OptionalInt  `json:"subjectId,omitempty"`
	CurrentPrice   OptionalInt  `json:"currentPrice,omitempty"`
	EventStartTime OptionalTime `json:"eventStartTime,omitempty"`
}

// OptionalInt decodes from a JSON number or numeric string. Anything else
// leaves it absent instead of failing the whole payload.
type OptionalInt struct {
	Value int
	Valid bool
}

// Some returns a present OptionalInt.
func Some(v int) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(raw, "+"), 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	o.Value, o.Valid = int(f), true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OptionalTime decodes an RFC3339 timestamp or date, leaving it absent when malformed.
type OptionalTime struct {
	Time  time.Time
	Valid bool
}

// At returns a present OptionalTime.
func At(t time.Time) OptionalTime {
	return OptionalTime{Time: t, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	*o = OptionalTime{}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil || raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			o.Time, o.Valid = t, true
			return nil
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Time.Format(time.RFC3339))
}

// ParsedRequest is a validated request with its derived fields.
type ParsedRequest struct {
	Request   EvaluationRequest
	Sport     Sport
	Statistic Statistic
	Line      float64
	EventDate time.Time
}

// HasLine reports whether the proposition carried a numeric threshold.
func (p ParsedRequest) HasLine() bool {
	return !math.IsNaN(p.Line)
}
