// Package logger provides stat provider logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ProviderLogger provides dedicated logging for outbound data calls.
type ProviderLogger struct {
	*logrus.Entry
}

// NewProviderLogger creates a new provider logger.
func NewProviderLogger(baseLogger *logrus.Logger, provider string) *ProviderLogger {
	return &ProviderLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "provider",
			"provider":  provider,
		}),
	}
}

// LogRequest logs a completed provider request.
func (pl *ProviderLogger) LogRequest(endpoint string, rows int, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"endpoint":   endpoint,
		"rows":       rows,
		"cache_hit":  cacheHit,
		"latency_ms": latencyMs,
	}).Debug("Provider request completed")
}

// LogDegraded logs a failed provider call that degraded to an empty result.
func (pl *ProviderLogger) LogDegraded(endpoint, kind string, err error) {
	pl.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"kind":     kind,
	}).WithError(err).Warn("Provider call degraded to empty result")
}

// LogCircuitOpen logs the circuit breaker opening.
func (pl *ProviderLogger) LogCircuitOpen(consecutiveErrors int, err error) {
	pl.WithField("consecutive_errors", consecutiveErrors).WithError(err).Error("Provider circuit breaker opened")
}
