package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/config"
)

// Factory builds provider clients from configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
	cache  Cache
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, cache Cache, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
		cache:  cache,
	}
}

// HTTPClient builds the shared rate-limited transport for a provider section.
func (f *Factory) HTTPClient(timeoutSeconds int) *RateLimitedHTTPClient {
	p := f.config.Provider
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		MaxRetries:        p.MaxRetries,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      2 * time.Second,
		RateLimit:         p.RateLimit,
		CircuitBreakerMax: p.CircuitBreakerMax,
		CircuitCooldown:   time.Duration(p.CircuitCooldownSeconds) * time.Second,
	}, f.logger)
}

// NewSportsData creates the primary stat and odds client.
func (f *Factory) NewSportsData(httpClient HTTPGetter) (*SportsDataClient, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	p := f.config.Provider
	if p.APIKey == "" && f.logger != nil {
		f.logger.Warn("Provider API key not configured; stat lookups will report NO_CREDENTIALS")
	}
	return NewSportsDataClient(SportsDataConfig{
		BaseURL: p.BaseURL,
		APIKey:  p.APIKey,
		Timeout: f.config.ProviderTimeout(),
		TTLs: TTLs{
			Stats:  time.Duration(p.StatsTTLMinutes) * time.Minute,
			Season: time.Duration(p.SeasonTTLMinutes) * time.Minute,
			Odds:   time.Duration(p.OddsTTLMinutes) * time.Minute,
		},
	}, httpClient, f.cache, f.logger), nil
}

// NewOddsSources returns the odds chain in consultation order: the primary
// provider first, then the fallback feed when enabled.
func (f *Factory) NewOddsSources(primary *SportsDataClient, httpClient HTTPGetter) []OddsSource {
	sources := []OddsSource{primary}

	fb := f.config.FallbackOdds
	if !fb.Enabled {
		if f.logger != nil {
			f.logger.Debug("Skipping disabled fallback odds source")
		}
		return sources
	}

	timeout := f.config.ProviderTimeout()
	if fb.TimeoutSeconds > 0 {
		timeout = time.Duration(fb.TimeoutSeconds) * time.Second
	}
	sources = append(sources, NewOddsAPIClient(OddsAPIConfig{
		BaseURL: fb.BaseURL,
		APIKey:  fb.APIKey,
		Regions: fb.Regions,
		Timeout: timeout,
		TTL:     time.Duration(f.config.Provider.OddsTTLMinutes) * time.Minute,
	}, httpClient, f.cache, f.logger))
	if f.logger != nil {
		f.logger.WithField("source", oddsAPIName).Info("Created fallback odds source")
	}
	return sources
}
