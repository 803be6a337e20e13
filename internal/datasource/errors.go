package datasource

import (
	"context"
	"errors"
	"net"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeTimeout              = "timeout"
	ErrCodeDisabled             = "disabled"
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// classify maps a transport or parse failure onto the evaluation taxonomy.
func classify(op string, err error) *models.EvalError {
	if err == nil {
		return nil
	}
	var ee *models.EvalError
	if errors.As(err, &ee) {
		return ee
	}

	kind := models.KindProviderError
	var netErr net.Error
	var dsErr DataSourceError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = models.KindProviderTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = models.KindProviderTimeout
	case errors.As(err, &dsErr) && dsErr.Code == ErrCodeTimeout:
		kind = models.KindProviderTimeout
	}
	return models.NewEvalError(kind, op, err)
}
