package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordEvaluation(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(EvaluationsTotal.WithLabelValues("MLB", "LEAN"))

	assert.NotPanics(t, func() {
		RecordEvaluation("MLB", "LEAN", 66.2, 0.4)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(EvaluationsTotal.WithLabelValues("MLB", "LEAN")))
}

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		name   string
		tier   string
		hit    bool
		result string
	}{
		{name: "memory hit", tier: "memory", hit: true, result: "hit"},
		{name: "miss", tier: "all", hit: false, result: "miss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues(tt.tier, tt.result))
			RecordCacheLookup(tt.tier, tt.hit)
			assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues(tt.tier, tt.result)))
		})
	}
}

func TestUpdateCacheHitRatio(t *testing.T) {
	UpdateCacheHitRatio(0.75)
	assert.Equal(t, 0.75, testutil.ToFloat64(CacheHitRatio))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordProviderRequest("PlayerGameStatsByDate", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "prop_evaluator_provider_requests_total"))
}
