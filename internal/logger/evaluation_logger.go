// Package logger provides evaluation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EvaluationLogger provides dedicated logging for the evaluation pipeline.
type EvaluationLogger struct {
	*logrus.Entry
}

// NewEvaluationLogger creates a new evaluation logger.
func NewEvaluationLogger(baseLogger *logrus.Logger) *EvaluationLogger {
	return &EvaluationLogger{
		Entry: baseLogger.WithField("component", "evaluator"),
	}
}

// LogEvaluation logs a completed evaluation.
func (el *EvaluationLogger) LogEvaluation(evaluationID, sport, subject, statisticLine, decision string, confidence float64, dataSource string, sampleSize int, durationMs float64) {
	el.WithFields(logrus.Fields{
		"evaluation_id":  evaluationID,
		"sport":          sport,
		"subject":        subject,
		"statistic_line": statisticLine,
		"decision":       decision,
		"confidence":     confidence,
		"data_source":    dataSource,
		"sample_size":    sampleSize,
		"duration_ms":    durationMs,
	}).Info("Evaluation completed")
}

// LogAmbiguousMatch logs an identity match whose runner-up scored too close.
func (el *EvaluationLogger) LogAmbiguousMatch(evaluationID, requested, matched string, score, runnerUp float64) {
	el.WithFields(logrus.Fields{
		"evaluation_id":   evaluationID,
		"requested_name":  requested,
		"matched_name":    matched,
		"match_score":     score,
		"runner_up_score": runnerUp,
	}).Warn("Ambiguous identity match")
}

// LogSafetyGate logs an evaluation forced to PASS.
func (el *EvaluationLogger) LogSafetyGate(evaluationID string, endpointsUsed, sampleSize int, reason string) {
	el.WithFields(logrus.Fields{
		"evaluation_id":  evaluationID,
		"endpoints_used": endpointsUsed,
		"sample_size":    sampleSize,
		"reason":         reason,
	}).Info("Safety gate forced PASS")
}

// LogFallback logs which source won a fallback chain.
func (el *EvaluationLogger) LogFallback(evaluationID, chain, source string, attempts int) {
	el.WithFields(logrus.Fields{
		"evaluation_id": evaluationID,
		"chain":         chain,
		"source":        source,
		"attempts":      attempts,
	}).Debug("Fallback chain resolved")
}

// LogFatal logs a recovered failure that produced an ERROR result.
func (el *EvaluationLogger) LogFatal(evaluationID string, recovered interface{}) {
	el.WithFields(logrus.Fields{
		"evaluation_id": evaluationID,
		"panic":         recovered,
	}).Error("Evaluation failed")
}
