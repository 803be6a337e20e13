// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for outbound records
// and access decisions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSinkWrite logs an analytics or history record.
func (al *AuditLogger) LogSinkWrite(sink, evaluationID, subjectID string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"sink":          sink,
		"evaluation_id": evaluationID,
		"subject_id":    subjectID,
		"timestamp":     timestamp.Unix(),
	}).Debug("Evaluation record written")
}

// LogSinkFailure logs a failed write; sink failures never reach the caller.
func (al *AuditLogger) LogSinkFailure(sink, evaluationID string, err error) {
	al.WithFields(logrus.Fields{
		"sink":          sink,
		"evaluation_id": evaluationID,
	}).WithError(err).Warn("Evaluation record write failed")
}

// LogQuotaDenied logs a request rejected by the usage collaborator.
func (al *AuditLogger) LogQuotaDenied(subjectID, tier string, remaining int) {
	al.WithFields(logrus.Fields{
		"subject_id": subjectID,
		"tier":       tier,
		"remaining":  remaining,
	}).Warn("Evaluation request denied by quota")
}

// LogCacheCleared logs an operator cache flush.
func (al *AuditLogger) LogCacheCleared(reason string) {
	al.WithField("reason", reason).Info("Response cache cleared")
}
