package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/logger"
)

func TestDisabledTracerPassesThrough(t *testing.T) {
	tr, err := Initialize(Config{ServiceName: "prop-evaluator"}, logger.Discard())
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	called := false
	h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAnnotationsWithoutSegmentAreNoops(t *testing.T) {
	assert.NotPanics(t, func() {
		AddAnnotation(context.Background(), "decision", "PASS")
		AddError(context.Background(), errors.New("boom"))
	})
}

func TestSamplingRules(t *testing.T) {
	assert.JSONEq(t,
		`{"version":2,"rules":[],"default":{"fixed_target":1,"rate":0.05}}`,
		string(samplingRules(0.05)))
}

func TestNilTracerIsDisabled(t *testing.T) {
	var tr *Tracer
	assert.False(t, tr.Enabled())
}
