package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// Poster sends a request body. *datasource.RateLimitedHTTPClient satisfies it.
type Poster interface {
	Post(ctx context.Context, url string, contentType string, body io.Reader, headers map[string]string) (*http.Response, error)
}

// AnalyticsEvent is the body posted after each evaluation.
type AnalyticsEvent struct {
	SubjectID  string          `json:"subjectId"`
	Pick       string          `json:"pick"`
	OddsAtPick *int            `json:"oddsAtPick"`
	CLV        *float64        `json:"clv"`
	Timestamp  time.Time       `json:"timestamp"`
	Decision   models.Decision `json:"decision"`
}

// Analytics posts evaluation events to an external endpoint.
type Analytics struct {
	client Poster
	url    string
	token  string
}

// NewAnalytics creates the analytics sink. token is sent as a bearer token
// when non-empty.
func NewAnalytics(client Poster, url, token string) *Analytics {
	return &Analytics{client: client, url: url, token: token}
}

// Name implements evaluator.Sink.
func (a *Analytics) Name() string { return "analytics" }

// Event builds the analytics body for a result.
func (a *Analytics) Event(ctx context.Context, r *models.EvaluationResult) AnalyticsEvent {
	pick := string(r.Pick)
	if pick == "" {
		pick = string(r.Decision)
	}
	return AnalyticsEvent{
		SubjectID:  subjectID(ctx),
		Pick:       pick,
		OddsAtPick: oddsAtPick(r),
		CLV:        clvPercent(r),
		Timestamp:  r.EvaluatedAt,
		Decision:   r.Decision,
	}
}

// Write implements evaluator.Sink.
func (a *Analytics) Write(ctx context.Context, r *models.EvaluationResult) error {
	body, err := json.Marshal(a.Event(ctx, r))
	if err != nil {
		return fmt.Errorf("failed to encode analytics event: %w", err)
	}

	headers := map[string]string{}
	if a.token != "" {
		headers["Authorization"] = "Bearer " + a.token
	}

	resp, err := a.client.Post(ctx, a.url, "application/json", bytes.NewReader(body), headers)
	if err != nil {
		return fmt.Errorf("analytics post failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
