package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerFormats(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("debug", "production", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = New("nonsense", "development", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestEvaluationLoggerEvaluation(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogEvaluation("eval_1", "MLB", "Gerrit Cole", "Strikeouts 6.5", "LEAN", 66.1, "sportsdata", 10, 412.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "evaluator", logEntry["component"])
	assert.Equal(t, "LEAN", logEntry["decision"])
	assert.Equal(t, float64(10), logEntry["sample_size"])
}

func TestEvaluationLoggerAmbiguousMatch(t *testing.T) {
	log, buf := setupTestLogger()
	NewEvaluationLogger(log).LogAmbiguousMatch("eval_1", "J. Williams", "Jaylin Williams", 0.82, 0.80)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "Jaylin Williams", logEntry["matched_name"])
}

func TestEvaluationLoggerSafetyGate(t *testing.T) {
	log, buf := setupTestLogger()
	NewEvaluationLogger(log).LogSafetyGate("eval_1", 0, 0, "no_real_data")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "no_real_data", logEntry["reason"])
}

func TestProviderLoggerDegraded(t *testing.T) {
	log, buf := setupTestLogger()
	NewProviderLogger(log, "sportsdata").LogDegraded("mlb:PlayerGameStatsByDate:2024-JUN-01", "PROVIDER_TIMEOUT", errors.New("deadline exceeded"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "provider", logEntry["component"])
	assert.Equal(t, "sportsdata", logEntry["provider"])
	assert.Equal(t, "PROVIDER_TIMEOUT", logEntry["kind"])
	assert.Equal(t, "deadline exceeded", logEntry["error"])
}

func TestAuditLoggerSinkWrite(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogSinkWrite("history", "eval_1", "user_42", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "history", logEntry["sink"])
	assert.Equal(t, "user_42", logEntry["subject_id"])
}

func TestAuditLoggerQuotaDenied(t *testing.T) {
	log, buf := setupTestLogger()
	NewAuditLogger(log).LogQuotaDenied("user_42", "free", 0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "free", logEntry["tier"])
	assert.Equal(t, float64(0), logEntry["remaining"])
}
