package features

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/datasource"
	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/resolver"
)

// fakeProvider serves canned rows keyed by date or week.
type fakeProvider struct {
	mu      sync.Mutex
	byDate  map[string][]models.GameStatRow
	byWeek  map[string][]models.GameStatRow
	teams   map[string][]models.GameStatRow
	season  []models.GameStatRow
	fail    error
	fetched []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		byDate: map[string][]models.GameStatRow{},
		byWeek: map[string][]models.GameStatRow{},
		teams:  map[string][]models.GameStatRow{},
	}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (f *fakeProvider) result(sig string, rows []models.GameStatRow) datasource.FetchResult {
	f.mu.Lock()
	f.fetched = append(f.fetched, sig)
	f.mu.Unlock()
	if f.fail != nil {
		return datasource.FetchResult{Err: f.fail}
	}
	return datasource.FetchResult{Rows: rows, Endpoint: sig}
}

func (f *fakeProvider) FetchByDate(ctx context.Context, sport models.Sport, date time.Time) datasource.FetchResult {
	return f.result("date:"+dayKey(date), f.byDate[dayKey(date)])
}

func (f *fakeProvider) FetchSeasonTotals(ctx context.Context, sport models.Sport, season int) datasource.FetchResult {
	return f.result(fmt.Sprintf("season:%d", season), f.season)
}

func (f *fakeProvider) FetchWeek(ctx context.Context, season, week int) datasource.FetchResult {
	key := fmt.Sprintf("%d-%d", season, week)
	return f.result("week:"+key, f.byWeek[key])
}

func (f *fakeProvider) FetchTeamGamesByDate(ctx context.Context, sport models.Sport, date time.Time) datasource.FetchResult {
	return f.result("team:"+dayKey(date), f.teams[dayKey(date)])
}

func (f *fakeProvider) FetchTeamGamesByWeek(ctx context.Context, season, week int) datasource.FetchResult {
	return f.result(fmt.Sprintf("teamweek:%d-%d", season, week), nil)
}

var event = time.Date(2024, time.June, 20, 19, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func pitcherRow(id int, name string, day time.Time, innings float64, ks *float64, k9 *float64) models.GameStatRow {
	return models.GameStatRow{
		Sport: models.SportMLB, PlayerID: id, Name: name, Position: "SP", Date: day,
		Baseball: &models.BaseballLine{InningsPitched: innings, PitchingStarts: 1, Strikeouts: ks, StrikeoutsPerNine: k9},
	}
}

func parsed(sport models.Sport, name, line string) models.ParsedRequest {
	stat, threshold, _ := models.ParseStatisticLine(line)
	return models.ParsedRequest{
		Request:   models.EvaluationRequest{Sport: string(sport), SubjectName: name, StatisticLine: line},
		Sport:     sport,
		Statistic: stat,
		Line:      threshold,
		EventDate: event,
	}
}

func newTestCollector(p datasource.StatProvider, cfg Config, baselines BaselineFunc) *Collector {
	return NewCollector(p, resolver.New(resolver.DefaultConfig()), baselines, cfg, logger.Discard())
}

// pitcherHistory gives the subject a start every fifth day and a reliever every day.
func pitcherHistory(p *fakeProvider, starts int) {
	for i := 0; i < starts; i++ {
		day := event.AddDate(0, 0, -1-5*i)
		p.byDate[dayKey(day)] = []models.GameStatRow{
			pitcherRow(99, "Other Arm", day, 5, ptr(4), nil),
			pitcherRow(10, "Gerrit Cole", day, 6, ptr(float64(5+i%4)), nil),
		}
	}
}

func TestCollectScansBackwardsNewestFirst(t *testing.T) {
	p := newFakeProvider()
	pitcherHistory(p, 9)

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	require.NotNil(t, col.Identity)
	assert.Equal(t, 10, col.Identity.ID)
	assert.Equal(t, []float64{5, 6, 7, 8, 5, 6, 7, 8, 5}, col.Features.RecentSample)
	assert.Equal(t, models.SourceSportsData, col.Features.DataSource)
	assert.InDelta(t, 57.0/9.0, col.Features.UsedAverage, 1e-9)
	assert.Equal(t, "date:2024-06-19", col.Endpoints[0])
	assert.Len(t, col.Endpoints, 45+1)
}

func TestCollectWithoutPlayerIDsKeepsMatchingByName(t *testing.T) {
	p := newFakeProvider()
	for i := 0; i < 5; i++ {
		day := event.AddDate(0, 0, -1-5*i)
		p.byDate[dayKey(day)] = []models.GameStatRow{
			pitcherRow(0, "Other Arm", day, 6, ptr(1), nil),
			pitcherRow(0, "Gerrit Cole", day, 6, ptr(float64(5+i)), nil),
		}
	}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	require.NotNil(t, col.Identity)
	assert.Zero(t, col.Identity.ID)
	assert.Equal(t, "Gerrit Cole", col.Identity.Name)
	assert.Equal(t, []float64{5, 6, 7, 8, 9}, col.Features.RecentSample)
}

func TestCollectStopsAtTargetSample(t *testing.T) {
	p := newFakeProvider()
	pitcherHistory(p, 9)
	cfg := DefaultConfig()
	cfg.TargetSample = 3

	col := newTestCollector(p, cfg, nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	assert.Len(t, col.Features.RecentSample, 3)
	// Three starts five days apart need 11 date fetches plus the season call.
	assert.Len(t, p.fetched, 12)
}

func TestCollectIsDeterministic(t *testing.T) {
	p := newFakeProvider()
	pitcherHistory(p, 9)
	req := parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5")
	c := newTestCollector(p, DefaultConfig(), nil)

	first := c.Collect(context.Background(), req)
	second := c.Collect(context.Background(), req)

	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Endpoints, second.Endpoints)
}

func TestCollectConcurrencyPreservesResult(t *testing.T) {
	p := newFakeProvider()
	pitcherHistory(p, 9)
	req := parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5")
	cfg := DefaultConfig()
	cfg.TargetSample = 4

	sequential := newTestCollector(p, cfg, nil).Collect(context.Background(), req)
	cfg.Concurrency = 4
	parallel := newTestCollector(p, cfg, nil).Collect(context.Background(), req)

	assert.Equal(t, sequential.Features, parallel.Features)
	assert.Equal(t, sequential.Endpoints, parallel.Endpoints)
}

func TestCollectReliefAppearanceIsNotInflated(t *testing.T) {
	p := newFakeProvider()
	d1 := event.AddDate(0, 0, -1)
	d2 := event.AddDate(0, 0, -2)
	p.byDate[dayKey(d1)] = []models.GameStatRow{pitcherRow(10, "Gerrit Cole", d1, 0.2, nil, ptr(13.5))}
	p.byDate[dayKey(d2)] = []models.GameStatRow{pitcherRow(10, "Gerrit Cole", d2, 6, nil, ptr(9))}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	assert.Equal(t, []float64{6}, col.Features.RecentSample)
	assert.Equal(t, 1, col.Features.FilteredRows)
}

func TestCollectCountsNonParticipation(t *testing.T) {
	p := newFakeProvider()
	d1 := event.AddDate(0, 0, -1)
	d2 := event.AddDate(0, 0, -2)
	p.byDate[dayKey(d1)] = []models.GameStatRow{{PlayerID: 5, Name: "Jalen Brunson", Basketball: &models.BasketballLine{Minutes: 0}}}
	p.byDate[dayKey(d2)] = []models.GameStatRow{{PlayerID: 5, Name: "Jalen Brunson", Basketball: &models.BasketballLine{Minutes: 36, Points: 31}}}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportNBA, "Jalen Brunson", "Points 27.5"))

	assert.Equal(t, []float64{31}, col.Features.RecentSample)
	assert.Equal(t, 1, col.Features.FilteredRows)
}

func TestCollectSeasonAverageIsPerStart(t *testing.T) {
	p := newFakeProvider()
	p.season = []models.GameStatRow{
		{PlayerID: 10, Name: "Gerrit Cole", Position: "SP", Started: 30,
			Baseball: &models.BaseballLine{InningsPitched: 190, PitchingStarts: 30, Strikeouts: ptr(180)}},
		{PlayerID: 11, Name: "Other Arm", Position: "SP", Started: 10,
			Baseball: &models.BaseballLine{InningsPitched: 60, PitchingStarts: 10, Strikeouts: ptr(40)}},
	}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	require.NotNil(t, col.Features.SeasonAverage)
	assert.Equal(t, 6.0, *col.Features.SeasonAverage)
	require.NotNil(t, col.Features.LeagueAverage)
	assert.Equal(t, 5.5, *col.Features.LeagueAverage)
	assert.Equal(t, models.SourceSportsData, col.Features.DataSource)
	assert.Equal(t, 6.0, col.Features.UsedAverage)
}

func TestCollectBlendsRecentAndSeason(t *testing.T) {
	p := newFakeProvider()
	pitcherHistory(p, 1)
	p.season = []models.GameStatRow{{PlayerID: 10, Name: "Gerrit Cole", Position: "SP",
		Baseball: &models.BaseballLine{InningsPitched: 100, PitchingStarts: 20, Strikeouts: ptr(150)}}}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Gerrit Cole", "Strikeouts 6.5"))

	assert.InDelta(t, 0.7*5+0.3*7.5, col.Features.UsedAverage, 1e-9)
}

func TestCollectFallbackChain(t *testing.T) {
	p := newFakeProvider()
	p.fail = models.NewEvalError(models.KindProviderError, "test", models.ErrNoCredentials)
	req := parsed(models.SportNBA, "Nobody", "Points 20.5")

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), req)
	assert.Equal(t, models.SourceHardDefault, col.Features.DataSource)
	assert.Equal(t, models.HardDefault(models.SportNBA, models.StatPoints), col.Features.UsedAverage)
	assert.Empty(t, col.Endpoints)
	assert.True(t, col.HasCredentialError())
	assert.Equal(t, []models.ErrorKind{models.KindProviderError}, col.ErrorKinds())
	assert.Equal(t, models.StatPoints.VarianceFloor(), col.Features.Variance)

	baselines := func(sport models.Sport, stat models.Statistic) (float64, bool) { return 18.5, true }
	col = newTestCollector(p, DefaultConfig(), baselines).Collect(context.Background(), req)
	assert.Equal(t, models.SourceStatisticalBaseline, col.Features.DataSource)
	assert.Equal(t, 18.5, col.Features.UsedAverage)
	assert.Equal(t, []string{"sportsdata", "league_average"}, col.MeanAttempts)
}

func TestCollectLeagueAverageFromScannedRows(t *testing.T) {
	p := newFakeProvider()
	d1 := event.AddDate(0, 0, -1)
	p.byDate[dayKey(d1)] = []models.GameStatRow{
		{PlayerID: 1, Name: "A Player", Basketball: &models.BasketballLine{Minutes: 30, Points: 10}},
		{PlayerID: 2, Name: "B Player", Basketball: &models.BasketballLine{Minutes: 30, Points: 20}},
	}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportNBA, "Zzyzx Qqq", "Points 20.5"))

	assert.Nil(t, col.Identity)
	assert.Equal(t, models.SourceLeagueAverage, col.Features.DataSource)
	assert.Equal(t, 15.0, col.Features.UsedAverage)
}

func TestCollectWeeklySport(t *testing.T) {
	p := newFakeProvider()
	nflEvent := time.Date(2024, time.October, 13, 17, 0, 0, 0, time.UTC)
	season, week := models.NFLWeekFor(nflEvent)
	ps, pw := models.PreviousNFLWeek(season, week)
	p.byWeek[fmt.Sprintf("%d-%d", ps, pw)] = []models.GameStatRow{
		{PlayerID: 7, Name: "Josh Allen", Games: 1, Football: &models.FootballLine{Played: 1, PassingYards: 263}},
	}
	req := parsed(models.SportNFL, "Josh Allen", "Passing Yards 245.5")
	req.EventDate = nflEvent

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), req)

	assert.Equal(t, []float64{263}, col.Features.RecentSample)
	assert.Equal(t, fmt.Sprintf("week:%d-%d", ps, pw), col.Endpoints[0])
}

func TestCollectMoneylineUsesTeamResults(t *testing.T) {
	p := newFakeProvider()
	for i, won := range []bool{true, true, false} {
		day := event.AddDate(0, 0, -1-i)
		score := 3.0
		if won {
			score = 6
		}
		p.teams[dayKey(day)] = []models.GameStatRow{{PlayerID: 30, Name: "New York Yankees", Team: "NYY",
			TeamGame: &models.TeamGameLine{Score: score, OpponentScore: 4, IsClosed: true}}}
	}

	col := newTestCollector(p, DefaultConfig(), nil).Collect(context.Background(), parsed(models.SportMLB, "Yankees", "Moneyline"))

	assert.Equal(t, []float64{1, 1, 0}, col.Features.RecentSample)
	assert.Nil(t, col.Features.SeasonAverage)
	assert.True(t, math.Abs(col.Features.UsedAverage-2.0/3.0) < 1e-9)
}
