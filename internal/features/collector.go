// Package features assembles the per-subject feature set the model consumes.
package features

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/prop-evaluator/internal/datasource"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/resolver"
)

// Config controls how much history is gathered.
type Config struct {
	TargetSample      int
	LookbackDays      map[models.Sport]int
	NFLLookbackWeeks  int
	MinInningsForRate float64
	RecentWeight      float64
	// Concurrency is how many periods are fetched at once. Results are still
	// consumed in order so the scan stops at the same period either way.
	Concurrency int
}

// DefaultConfig returns the standard collector parameters.
func DefaultConfig() Config {
	return Config{
		TargetSample: 10,
		LookbackDays: map[models.Sport]int{
			models.SportNBA:  21,
			models.SportWNBA: 21,
			models.SportMLB:  45,
		},
		NFLLookbackWeeks:  8,
		MinInningsForRate: 3.0,
		RecentWeight:      0.7,
		Concurrency:       1,
	}
}

func (c Config) lookbackDays(sport models.Sport) int {
	if d, ok := c.LookbackDays[sport]; ok && d > 0 {
		return d
	}
	return 21
}

// BaselineFunc returns an operator-configured mean for a sport and statistic.
type BaselineFunc func(sport models.Sport, stat models.Statistic) (float64, bool)

// Collection is everything the collect stage learned about a subject.
type Collection struct {
	Features  models.FeatureSet
	Identity  *models.ResolvedIdentity
	RunnerUp  float64
	Endpoints []string
	Errors    []error
	// MeanAttempts lists the average sources that were tried and failed.
	MeanAttempts []string
}

// HasCredentialError reports whether any provider call was refused for missing credentials.
func (c *Collection) HasCredentialError() bool {
	for _, err := range c.Errors {
		if errors.Is(err, models.ErrNoCredentials) {
			return true
		}
	}
	return false
}

// ErrorKinds returns the distinct error kinds seen during collection.
func (c *Collection) ErrorKinds() []models.ErrorKind {
	seen := map[models.ErrorKind]bool{}
	var kinds []models.ErrorKind
	for _, err := range c.Errors {
		k := models.KindOf(err)
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (c *Collection) record(res datasource.FetchResult) {
	if res.Endpoint != "" {
		for _, e := range c.Endpoints {
			if e == res.Endpoint {
				return
			}
		}
		c.Endpoints = append(c.Endpoints, res.Endpoint)
	}
	if res.Err != nil {
		c.Errors = append(c.Errors, res.Err)
	}
}

// Collector scans provider history backwards from the event date.
type Collector struct {
	provider  datasource.StatProvider
	resolver  *resolver.Resolver
	baselines BaselineFunc
	cfg       Config
	logger    *logrus.Entry
}

// NewCollector creates a collector. baselines may be nil.
func NewCollector(provider datasource.StatProvider, res *resolver.Resolver, baselines BaselineFunc, cfg Config, logger *logrus.Logger) *Collector {
	if cfg.TargetSample <= 0 {
		cfg.TargetSample = DefaultConfig().TargetSample
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.NFLLookbackWeeks <= 0 {
		cfg.NFLLookbackWeeks = DefaultConfig().NFLLookbackWeeks
	}
	if baselines == nil {
		baselines = func(models.Sport, models.Statistic) (float64, bool) { return 0, false }
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Collector{
		provider:  provider,
		resolver:  res,
		baselines: baselines,
		cfg:       cfg,
		logger:    logger.WithField("component", "collector"),
	}
}

// period is one date or one NFL week to fetch.
type period struct {
	date   time.Time
	season int
	week   int
}

func (c *Collector) periods(sport models.Sport, event time.Time) []period {
	if sport.IsWeekly() {
		season, week := models.NFLWeekFor(event)
		out := make([]period, 0, c.cfg.NFLLookbackWeeks)
		for i := 0; i < c.cfg.NFLLookbackWeeks; i++ {
			season, week = models.PreviousNFLWeek(season, week)
			out = append(out, period{season: season, week: week})
		}
		return out
	}

	days := c.cfg.lookbackDays(sport)
	start := time.Date(event.Year(), event.Month(), event.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]period, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, period{date: start.AddDate(0, 0, -i)})
	}
	return out
}

func (c *Collector) fetch(ctx context.Context, sport models.Sport, stat models.Statistic, p period) datasource.FetchResult {
	team := stat.IsTeamLevel()
	switch {
	case sport.IsWeekly() && team:
		return c.provider.FetchTeamGamesByWeek(ctx, p.season, p.week)
	case sport.IsWeekly():
		return c.provider.FetchWeek(ctx, p.season, p.week)
	case team:
		return c.provider.FetchTeamGamesByDate(ctx, sport, p.date)
	default:
		return c.provider.FetchByDate(ctx, sport, p.date)
	}
}

// Collect builds the feature set for a parsed request. It never fails:
// provider problems are recorded on the collection and the mean degrades
// through the average chain instead.
func (c *Collector) Collect(ctx context.Context, req models.ParsedRequest) Collection {
	var col Collection
	sport, stat := req.Sport, req.Statistic

	idHint := 0
	if req.Request.SubjectID.Valid {
		idHint = req.Request.SubjectID.Value
	}

	var (
		sample   []float64
		filtered int
		pool     poolStats
	)

	periods := c.periods(sport, req.EventDate)
	for i := 0; i < len(periods) && len(sample) < c.cfg.TargetSample; i += c.cfg.Concurrency {
		if ctx.Err() != nil {
			col.Errors = append(col.Errors, models.NewEvalError(models.KindProviderTimeout, "collect", ctx.Err()))
			break
		}
		batch := periods[i:min(i+c.cfg.Concurrency, len(periods))]
		for _, res := range c.fetchBatch(ctx, sport, stat, batch) {
			if len(sample) >= c.cfg.TargetSample {
				break
			}
			col.record(res)
			if len(res.Rows) == 0 {
				continue
			}
			pool.add(stat, res.Rows, c.cfg.MinInningsForRate)

			row, ok := c.subjectRow(req.Request.SubjectName, idHint, col.Identity, res.Rows, &col)
			if !ok {
				continue
			}
			if !participated(stat, row) {
				filtered++
				continue
			}
			v, ok := pickValue(stat, row, c.cfg.MinInningsForRate)
			if !ok {
				filtered++
				continue
			}
			sample = append(sample, v)
		}
	}

	fs := models.FeatureSet{RecentSample: sample, FilteredRows: filtered}
	if sample == nil {
		fs.RecentSample = []float64{}
	}

	if !stat.IsTeamLevel() {
		season, league := c.seasonAverages(ctx, req, idHint, &col)
		fs.SeasonAverage = season
		fs.LeagueAverage = league
		if fs.LeagueAverage == nil {
			fs.LeagueAverage = pool.mean()
		}
	}

	mean, source, attempts := c.usedAverage(ctx, sport, stat, fs)
	fs.UsedAverage = mean
	fs.DataSource = source
	fs.Variance = variance(stat, fs.RecentSample)
	col.MeanAttempts = attempts
	col.Features = fs

	c.logger.WithFields(logrus.Fields{
		"sport":         sport,
		"statistic":     stat,
		"sample_size":   len(sample),
		"filtered_rows": filtered,
		"data_source":   source,
		"endpoints":     len(col.Endpoints),
	}).Debug("Collected features")
	return col
}

// fetchBatch fetches periods concurrently and returns results in period order.
func (c *Collector) fetchBatch(ctx context.Context, sport models.Sport, stat models.Statistic, batch []period) []datasource.FetchResult {
	results := make([]datasource.FetchResult, len(batch))
	if len(batch) == 1 {
		results[0] = c.fetch(ctx, sport, stat, batch[0])
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, p := range batch {
		i, p := i, p
		g.Go(func() error {
			results[i] = c.fetch(gctx, sport, stat, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// subjectRow finds the subject in one period's rows. Once an identity with an
// identifier is resolved only identifier matches are accepted. Identities
// without one are re-resolved by name and must match the same name.
func (c *Collector) subjectRow(name string, idHint int, identity *models.ResolvedIdentity, rows []models.GameStatRow, col *Collection) (models.GameStatRow, bool) {
	if identity != nil && identity.ID > 0 {
		for _, row := range rows {
			if row.PlayerID == identity.ID {
				return row, true
			}
		}
		return models.GameStatRow{}, false
	}

	m, ok := c.resolver.Resolve(name, idHint, rows)
	if !ok {
		return models.GameStatRow{}, false
	}
	if identity != nil {
		if models.NormalizeName(m.Identity.Name) != models.NormalizeName(identity.Name) {
			return models.GameStatRow{}, false
		}
		return m.Row, true
	}
	id := m.Identity
	col.Identity = &id
	col.RunnerUp = m.RunnerUp
	return m.Row, true
}
