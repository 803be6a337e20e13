package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/access"
	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/models"
)

type stubEvaluator struct {
	got     models.EvaluationRequest
	subject access.Subject
	calls   int
}

func (s *stubEvaluator) Evaluate(ctx context.Context, req models.EvaluationRequest) *models.EvaluationResult {
	s.calls++
	s.got = req
	s.subject, _ = access.SubjectFrom(ctx)
	return &models.EvaluationResult{
		EvaluationID:  uuid.New(),
		SubjectName:   req.SubjectName,
		StatisticLine: req.StatisticLine,
		Decision:      models.DecisionPass,
		Confidence:    49.9,
		RawNumbers:    models.RawNumbers{UsedAverage: 7.4, SampleSize: 5, Variance: 7.4, ModelProbability: 0.608},
		CLV:           &models.CLVResult{OpeningPrice: -110, CurrentPrice: -130, Direction: models.CLVPositive, Favorability: models.Favorable},
		Flags:         []string{},
	}
}

type denyAll struct{}

func (denyAll) Check(context.Context, access.Subject) access.Decision {
	return access.Decision{Allowed: false, Remaining: 0}
}

type fixedQuota struct{ remaining int }

func (q fixedQuota) Check(context.Context, access.Subject) access.Decision {
	return access.Decision{Allowed: true, Remaining: q.remaining}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestServer(deps Deps) *Server {
	deps.Logger = logger.Discard()
	return New(Config{ServiceName: "prop-evaluator", Version: "test"}, deps)
}

func TestEvaluateRoute(t *testing.T) {
	eval := &stubEvaluator{}
	s := newTestServer(Deps{Evaluator: eval, Quota: fixedQuota{remaining: 7}})

	body := `{"sport":"MLB","subjectName":"Gerrit Cole","statisticLine":"Strikeouts 6.5","currentPrice":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader(body))
	req.Header.Set(HeaderSubjectID, "user-9")
	req.Header.Set(HeaderSubjectTier, "Pro")
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get(HeaderQuotaRemaining))
	assert.Equal(t, 1, eval.calls)
	assert.Equal(t, "Gerrit Cole", eval.got.SubjectName)
	assert.False(t, eval.got.CurrentPrice.Valid, "malformed numeric fields become absent")
	assert.Equal(t, access.Subject{ID: "user-9", Tier: "pro"}, eval.subject)

	var got models.EvaluationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.DecisionPass, got.Decision)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	for _, key := range []string{"subjectName", "statisticLine", "decision", "finalConfidencePercent",
		"suggestedStakeUnits", "topDrivers", "flags", "rawNumbers", "clv"} {
		assert.Contains(t, payload, key)
	}
	assert.Equal(t, 49.9, payload["finalConfidencePercent"])

	raw, ok := payload["rawNumbers"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"usedAverage", "sampleSize", "variance", "modelProbability"} {
		assert.Contains(t, raw, key)
	}

	clv, ok := payload["clv"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"percent", "direction", "favorability", "openingImpliedProb", "currentImpliedProb"} {
		assert.Contains(t, clv, key)
	}
	assert.Equal(t, "favorable", clv["favorability"])
}

func TestEvaluateRejectsUndecodableBody(t *testing.T) {
	eval := &stubEvaluator{}
	s := newTestServer(Deps{Evaluator: eval})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, eval.calls)
}

func TestQuotaDenialSkipsEvaluator(t *testing.T) {
	eval := &stubEvaluator{}
	s := newTestServer(Deps{Evaluator: eval, Quota: denyAll{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderQuotaRemaining))
	assert.JSONEq(t, `{"error":"quota exceeded","remaining":0}`, rec.Body.String())
	assert.Zero(t, eval.calls)
}

func TestHealth(t *testing.T) {
	s := newTestServer(Deps{Evaluator: &stubEvaluator{}})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "prop-evaluator", got.Service)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		ready  bool
		db     DatabasePinger
		status int
	}{
		{"not ready", false, nil, http.StatusServiceUnavailable},
		{"ready without database", true, nil, http.StatusOK},
		{"ready with database", true, pinger{}, http.StatusOK},
		{"database down", true, pinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(Deps{Evaluator: &stubEvaluator{}, DB: tt.db})
			s.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(Deps{Evaluator: &stubEvaluator{}})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamRouteMountedWhenConfigured(t *testing.T) {
	called := false
	stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
	s := newTestServer(Deps{Evaluator: &stubEvaluator{}, Stream: stream})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/evaluations", nil))
	assert.True(t, called)

	bare := newTestServer(Deps{Evaluator: &stubEvaluator{}})
	rec = httptest.NewRecorder()
	bare.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/evaluations", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartRequiresEvaluator(t *testing.T) {
	s := New(Config{}, Deps{})
	assert.Error(t, s.Start(context.Background()))
}
