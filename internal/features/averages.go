package features

import (
	"context"
	"errors"
	"math"

	"github.com/yourusername/prop-evaluator/internal/fallback"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/probability"
)

var (
	errNoRecent   = errors.New("no recent or season average")
	errNoLeague   = errors.New("no league average")
	errNoBaseline = errors.New("no configured baseline")
)

// poolStats accumulates every participating row seen during the scan so a
// league average can be formed when season totals are unavailable.
type poolStats struct {
	total float64
	games float64
}

func (p *poolStats) add(stat models.Statistic, rows []models.GameStatRow, minInnings float64) {
	if stat.IsTeamLevel() {
		return
	}
	for _, row := range rows {
		if !participated(stat, row) {
			continue
		}
		if v, ok := pickValue(stat, row, minInnings); ok {
			p.total += v
			p.games++
		}
	}
}

func (p *poolStats) mean() *float64 {
	if p.games == 0 {
		return nil
	}
	m := p.total / p.games
	return &m
}

// seasonAverages reads season totals once and returns the subject's per-game
// season average and the league per-game average.
func (c *Collector) seasonAverages(ctx context.Context, req models.ParsedRequest, idHint int, col *Collection) (*float64, *float64) {
	stat := req.Statistic
	season := req.Sport.SeasonFor(req.EventDate)
	res := c.provider.FetchSeasonTotals(ctx, req.Sport, season)
	col.record(res)
	if len(res.Rows) == 0 {
		return nil, nil
	}

	var total, games float64
	for _, row := range res.Rows {
		if !participated(stat, row) {
			continue
		}
		v, ok := pickValue(stat, row, 0)
		g := gamesFor(stat, row)
		if !ok || g <= 0 {
			continue
		}
		total += v
		games += g
	}
	var league *float64
	if games > 0 {
		l := total / games
		league = &l
	}

	row, ok := c.subjectRow(req.Request.SubjectName, idHint, col.Identity, res.Rows, col)
	if !ok {
		return nil, league
	}
	v, ok := pickValue(stat, row, 0)
	g := gamesFor(stat, row)
	if !ok || g <= 0 {
		return nil, league
	}
	avg := v / g
	return &avg, league
}

// usedAverage walks the mean chain: provider data, league average,
// configured baseline, hard default.
func (c *Collector) usedAverage(ctx context.Context, sport models.Sport, stat models.Statistic, fs models.FeatureSet) (float64, models.DataSource, []string) {
	out, err := fallback.FirstSuccess(ctx,
		fallback.Source[float64]{Name: string(models.SourceSportsData), Fetch: func(context.Context) (float64, error) {
			return c.blend(fs)
		}},
		fallback.Source[float64]{Name: string(models.SourceLeagueAverage), Fetch: func(context.Context) (float64, error) {
			if fs.LeagueAverage == nil {
				return 0, errNoLeague
			}
			return *fs.LeagueAverage, nil
		}},
		fallback.Source[float64]{Name: string(models.SourceStatisticalBaseline), Fetch: func(context.Context) (float64, error) {
			if v, ok := c.baselines(sport, stat); ok {
				return v, nil
			}
			return 0, errNoBaseline
		}},
		fallback.Static(string(models.SourceHardDefault), models.HardDefault(sport, stat)),
	)
	if err != nil {
		// Only a cancelled context gets here; the hard default still applies.
		out.Value = models.HardDefault(sport, stat)
		out.Source = string(models.SourceHardDefault)
	}

	attempts := make([]string, 0, len(out.Attempts))
	for _, a := range out.Attempts {
		attempts = append(attempts, a.Name)
	}
	metrics.RecordFallbackSource("mean", out.Source)
	return out.Value, models.DataSource(out.Source), attempts
}

// blend weights the recent mean against the season average when both exist.
func (c *Collector) blend(fs models.FeatureSet) (float64, error) {
	recent, hasRecent := fs.RecentMean()
	switch {
	case hasRecent && fs.SeasonAverage != nil:
		w := c.cfg.RecentWeight
		return w*recent + (1-w)*(*fs.SeasonAverage), nil
	case hasRecent:
		return recent, nil
	case fs.SeasonAverage != nil:
		return *fs.SeasonAverage, nil
	}
	return 0, errNoRecent
}

// variance is the sample variance floored at the statistic minimum. Samples
// smaller than probability.MinVarianceSample use the floor outright.
func variance(stat models.Statistic, sample []float64) float64 {
	floor := stat.VarianceFloor()
	if len(sample) < probability.MinVarianceSample {
		return floor
	}
	v, ok := probability.SampleVariance(sample)
	if !ok || math.IsNaN(v) {
		return floor
	}
	return math.Max(v, floor)
}
