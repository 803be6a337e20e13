// Package tracing provides optional AWS X-Ray tracing for the HTTP entry point.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/strategy/sampling"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
)

// Config contains X-Ray configuration.
type Config struct {
	ServiceName  string
	Enabled      bool
	SamplingRate float64
	DaemonAddr   string
}

// Logger adapter for X-Ray SDK.
type xrayLoggerAdapter struct {
	logger *logrus.Entry
}

func (l *xrayLoggerAdapter) Log(level xraylog.LogLevel, msg fmt.Stringer) {
	switch level {
	case xraylog.LogLevelDebug:
		l.logger.Debug(msg.String())
	case xraylog.LogLevelInfo:
		l.logger.Info(msg.String())
	case xraylog.LogLevelWarn:
		l.logger.Warn(msg.String())
	case xraylog.LogLevelError:
		l.logger.Error(msg.String())
	}
}

// samplingRules builds a local rule set sampling one request per second plus
// rate of the remainder.
func samplingRules(rate float64) []byte {
	return []byte(fmt.Sprintf(`{"version":2,"rules":[],"default":{"fixed_target":1,"rate":%g}}`, rate))
}

// Tracer wraps handlers in X-Ray segments when enabled.
type Tracer struct {
	cfg Config
}

// Initialize configures AWS X-Ray. A disabled config yields a pass-through tracer.
func Initialize(cfg Config, logger *logrus.Logger) (*Tracer, error) {
	t := &Tracer{cfg: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	strategy, err := sampling.NewLocalizedStrategyFromJSONBytes(samplingRules(cfg.SamplingRate))
	if err != nil {
		return nil, fmt.Errorf("invalid sampling rate: %w", err)
	}

	xray.SetLogger(&xrayLoggerAdapter{logger: logger.WithField("component", "xray")})

	if err := xray.Configure(xray.Config{
		DaemonAddr:       cfg.DaemonAddr,
		SamplingStrategy: strategy,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure X-Ray: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"daemon_addr":   cfg.DaemonAddr,
		"sampling_rate": cfg.SamplingRate,
		"service_name":  cfg.ServiceName,
	}).Info("AWS X-Ray initialized")

	return t, nil
}

// Enabled reports whether segments are emitted.
func (t *Tracer) Enabled() bool {
	return t != nil && t.cfg.Enabled
}

// Middleware opens one segment per request.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	if !t.Enabled() {
		return next
	}
	return xray.Handler(xray.NewFixedSegmentNamer(t.cfg.ServiceName), next)
}

// AddAnnotation adds an indexed annotation to the current segment, if any.
func AddAnnotation(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// AddError records err on the current segment, if any.
func AddError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddError(err)
	}
}
