package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
)

const (
	providerName = "sportsdata"
	apiKeyHeader = "Ocp-Apim-Subscription-Key"
	maxBodyBytes = 32 << 20
)

// HTTPGetter is the transport used by provider clients.
type HTTPGetter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
}

// SportsDataConfig configures the primary stat and odds provider.
type SportsDataConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	TTLs    TTLs
}

// SportsDataClient implements StatProvider and OddsSource against a
// SportsData-style JSON API.
type SportsDataClient struct {
	http    HTTPGetter
	cache   Cache
	baseURL string
	apiKey  string
	timeout time.Duration
	ttls    TTLs
	group   singleflight.Group
	logger  *logger.ProviderLogger
}

// NewSportsDataClient creates a provider client. cache may be nil.
func NewSportsDataClient(cfg SportsDataConfig, httpClient HTTPGetter, cache Cache, log *logrus.Logger) *SportsDataClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TTLs == (TTLs{}) {
		cfg.TTLs = DefaultTTLs()
	}
	return &SportsDataClient{
		http:    httpClient,
		cache:   cache,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		ttls:    cfg.TTLs,
		logger:  logger.NewProviderLogger(log, providerName),
	}
}

// Configured reports whether credentials are present.
func (c *SportsDataClient) Configured() bool {
	return c.apiKey != ""
}

// FetchByDate returns every player game row for a date.
func (c *SportsDataClient) FetchByDate(ctx context.Context, sport models.Sport, date time.Time) FetchResult {
	ep := endpoint{sport: sport.PathSegment(), group: "stats", name: "PlayerGameStatsByDate", params: []string{providerDate(date)}}
	return c.playerRows(ctx, sport, ep, c.ttls.Stats)
}

// FetchSeasonTotals returns season aggregate rows for every player.
func (c *SportsDataClient) FetchSeasonTotals(ctx context.Context, sport models.Sport, season int) FetchResult {
	ep := endpoint{sport: sport.PathSegment(), group: "stats", name: "PlayerSeasonStats", params: []string{strconv.Itoa(season)}}
	return c.playerRows(ctx, sport, ep, c.ttls.Season)
}

// FetchWeek returns every NFL player game row for a week.
func (c *SportsDataClient) FetchWeek(ctx context.Context, season, week int) FetchResult {
	ep := endpoint{sport: models.SportNFL.PathSegment(), group: "stats", name: "PlayerGameStatsByWeek",
		params: []string{strconv.Itoa(season), strconv.Itoa(week)}}
	return c.playerRows(ctx, models.SportNFL, ep, c.ttls.Stats)
}

// FetchTeamGamesByDate returns team results for a date.
func (c *SportsDataClient) FetchTeamGamesByDate(ctx context.Context, sport models.Sport, date time.Time) FetchResult {
	ep := endpoint{sport: sport.PathSegment(), group: "scores", name: "TeamGameStatsByDate", params: []string{providerDate(date)}}
	return c.teamRows(ctx, sport, ep)
}

// FetchTeamGamesByWeek returns NFL team results for a week.
func (c *SportsDataClient) FetchTeamGamesByWeek(ctx context.Context, season, week int) FetchResult {
	ep := endpoint{sport: models.SportNFL.PathSegment(), group: "scores", name: "TeamGameStatsByWeek",
		params: []string{strconv.Itoa(season), strconv.Itoa(week)}}
	return c.teamRows(ctx, models.SportNFL, ep)
}

func (c *SportsDataClient) playerRows(ctx context.Context, sport models.Sport, ep endpoint, ttl time.Duration) FetchResult {
	start := time.Now()
	recs, cached, err := fetchRecords[playerGameRecord](ctx, c, ep, ttl)
	if err != nil {
		return c.degraded(ep, err)
	}
	rows := make([]models.GameStatRow, 0, len(recs))
	for i := range recs {
		rows = append(rows, recs[i].toRow(sport))
	}
	c.logger.LogRequest(ep.signature(), len(rows), cached, float64(time.Since(start).Milliseconds()))
	return FetchResult{Rows: rows, Endpoint: ep.signature(), Cached: cached}
}

func (c *SportsDataClient) teamRows(ctx context.Context, sport models.Sport, ep endpoint) FetchResult {
	start := time.Now()
	recs, cached, err := fetchRecords[teamGameRecord](ctx, c, ep, c.ttls.Stats)
	if err != nil {
		return c.degraded(ep, err)
	}
	rows := make([]models.GameStatRow, 0, len(recs))
	for i := range recs {
		rows = append(rows, recs[i].toRow(sport))
	}
	c.logger.LogRequest(ep.signature(), len(rows), cached, float64(time.Since(start).Milliseconds()))
	return FetchResult{Rows: rows, Endpoint: ep.signature(), Cached: cached}
}

func (c *SportsDataClient) degraded(ep endpoint, err error) FetchResult {
	c.logger.LogDegraded(ep.signature(), string(models.KindOf(err)), err)
	return FetchResult{Err: err}
}

type endpoint struct {
	sport  string
	group  string
	name   string
	params []string
}

// signature is the cache key and audit entry, e.g. nba:PlayerGameStatsByDate:2024-JAN-15.
func (e endpoint) signature() string {
	return e.sport + ":" + e.name + ":" + strings.Join(e.params, ":")
}

func (e endpoint) path() string {
	return "/" + e.sport + "/" + e.group + "/json/" + e.name + "/" + strings.Join(e.params, "/")
}

func providerDate(t time.Time) string {
	return strings.ToUpper(t.Format("2006-Jan-02"))
}

// fetchRecords serves an endpoint from cache or the network. The raw body is
// cached only after it decodes.
func fetchRecords[T any](ctx context.Context, c *SportsDataClient, ep endpoint, ttl time.Duration) ([]T, bool, error) {
	sig := ep.signature()
	if !c.Configured() {
		return nil, false, models.NewEvalError(models.KindProviderError, sig, models.ErrNoCredentials)
	}

	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, sig); ok {
			var out []T
			if err := json.Unmarshal(data, &out); err == nil {
				return out, true, nil
			}
		}
	}

	v, err, _ := c.group.Do(sig, func() (interface{}, error) {
		return c.getRaw(ctx, ep)
	})
	if err != nil {
		return nil, false, classify(sig, err)
	}
	body := v.([]byte)

	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false, classify(sig, NewDataSourceError(providerName, ErrCodeInvalidData, "decode "+ep.name, err))
	}
	if c.cache != nil {
		c.cache.Set(ctx, sig, body, ttl)
	}
	return out, false, nil
}

func (c *SportsDataClient) getRaw(ctx context.Context, ep endpoint) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	headers := map[string]string{
		apiKeyHeader: c.apiKey,
		"Accept":     "application/json",
	}
	resp, err := c.http.Get(callCtx, c.baseURL+ep.path(), headers)
	if err != nil {
		metrics.RecordProviderRequest(ep.name, "error")
		return nil, err
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest(ep.name, strconv.Itoa(resp.StatusCode))

	if err := statusError(providerName, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewDataSourceError(providerName, ErrCodeNetworkError, "failed to read response", err)
	}
	return body, nil
}

func statusError(source string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, "credentials rejected", nil)
	case status == http.StatusNotFound:
		return NewDataSourceError(source, ErrCodeNotFound, "resource not found", nil)
	case status == http.StatusTooManyRequests:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return NewDataSourceError(source, ErrCodeTimeout, fmt.Sprintf("upstream timeout (%d)", status), nil)
	default:
		return NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d", status), nil)
	}
}
