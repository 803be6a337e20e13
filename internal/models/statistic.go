package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Statistic is the measurable quantity a proposition is written against.
type Statistic string

const (
	StatPoints         Statistic = "points"
	StatRebounds       Statistic = "rebounds"
	StatAssists        Statistic = "assists"
	StatPRA            Statistic = "pra"
	StatThrees         Statistic = "threes"
	StatStrikeouts     Statistic = "strikeouts"
	StatHits           Statistic = "hits"
	StatTotalBases     Statistic = "total_bases"
	StatHomeRuns       Statistic = "home_runs"
	StatPassingYards   Statistic = "passing_yards"
	StatPassingTDs     Statistic = "passing_tds"
	StatRushingYards   Statistic = "rushing_yards"
	StatReceivingYards Statistic = "receiving_yards"
	StatReceptions     Statistic = "receptions"
	StatMoneyline      Statistic = "moneyline"
)

// Distribution names the probability model used for a statistic.
type Distribution string

const (
	DistPoisson   Distribution = "poisson"
	DistNormal    Distribution = "normal"
	DistBernoulli Distribution = "bernoulli"
)

type statisticInfo struct {
	dist    Distribution
	sdFloor float64
	sports  []Sport
}

var basketball = []Sport{SportNBA, SportWNBA}

var statistics = map[Statistic]statisticInfo{
	StatPoints:         {DistNormal, 4.0, basketball},
	StatRebounds:       {DistNormal, 2.0, basketball},
	StatAssists:        {DistNormal, 1.5, basketball},
	StatPRA:            {DistNormal, 5.0, basketball},
	StatThrees:         {DistPoisson, 1.0, basketball},
	StatStrikeouts:     {DistPoisson, 1.0, []Sport{SportMLB}},
	StatHits:           {DistPoisson, 1.0, []Sport{SportMLB}},
	StatTotalBases:     {DistPoisson, 1.0, []Sport{SportMLB}},
	StatHomeRuns:       {DistPoisson, 1.0, []Sport{SportMLB}},
	StatPassingYards:   {DistNormal, 35.0, []Sport{SportNFL}},
	StatPassingTDs:     {DistPoisson, 1.0, []Sport{SportNFL}},
	StatRushingYards:   {DistNormal, 15.0, []Sport{SportNFL}},
	StatReceivingYards: {DistNormal, 15.0, []Sport{SportNFL}},
	StatReceptions:     {DistPoisson, 1.0, []Sport{SportNFL}},
	StatMoneyline:      {DistBernoulli, 0.5, AllSports},
}

// Order matters: compound and more specific phrases come first.
var statisticKeywords = []struct {
	stat     Statistic
	keywords []string
}{
	{StatPRA, []string{"pra", "pts+reb+ast", "points+rebounds+assists"}},
	{StatMoneyline, []string{"moneyline", "money line", "to win", " ml"}},
	{StatPassingTDs, []string{"passing td", "pass td", "passing touchdown"}},
	{StatPassingYards, []string{"passing yard", "pass yds", "passing yds"}},
	{StatRushingYards, []string{"rushing yard", "rush yds", "rushing yds"}},
	{StatReceivingYards, []string{"receiving yard", "rec yds", "receiving yds"}},
	{StatReceptions, []string{"reception", "catches"}},
	{StatStrikeouts, []string{"strikeout", "k's", "pitcher ks"}},
	{StatTotalBases, []string{"total base"}},
	{StatHomeRuns, []string{"home run", "homer", " hr"}},
	{StatThrees, []string{"three", "3pm", "3-pointer", "3pt"}},
	{StatPoints, []string{"point", "pts"}},
	{StatRebounds, []string{"rebound", "reb"}},
	{StatAssists, []string{"assist", "ast"}},
	{StatHits, []string{"hit"}},
}

var numericToken = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// ParseStatisticLine extracts the statistic and numeric threshold from a
// free-text proposition such as "Strikeouts 6.5". The threshold is NaN when
// no numeric token is present.
func ParseStatisticLine(line string) (Statistic, float64, bool) {
	lower := " " + strings.ToLower(strings.TrimSpace(line))
	threshold := math.NaN()
	// The last token is the line; earlier ones belong to names like "3-pointers".
	if toks := numericToken.FindAllString(lower, -1); len(toks) > 0 {
		if v, err := strconv.ParseFloat(toks[len(toks)-1], 64); err == nil {
			threshold = v
		}
	}
	for _, kw := range statisticKeywords {
		for _, k := range kw.keywords {
			if strings.Contains(lower, k) {
				return kw.stat, threshold, true
			}
		}
	}
	return "", threshold, false
}

// Distribution returns the model family used for a statistic.
func (s Statistic) Distribution() Distribution {
	if info, ok := statistics[s]; ok {
		return info.dist
	}
	return DistNormal
}

// SDFloor is the minimum standard deviation used by the normal model.
func (s Statistic) SDFloor() float64 {
	if info, ok := statistics[s]; ok {
		return info.sdFloor
	}
	return 1.0
}

// VarianceFloor is the default variance used when the sample is too small.
func (s Statistic) VarianceFloor() float64 {
	f := s.SDFloor()
	return f * f
}

// SupportedBy reports whether the statistic is offered for the sport.
func (s Statistic) SupportedBy(sport Sport) bool {
	info, ok := statistics[s]
	if !ok {
		return false
	}
	for _, sp := range info.sports {
		if sp == sport {
			return true
		}
	}
	return false
}

// IsPitching reports whether participation is judged on pitching activity.
func (s Statistic) IsPitching() bool {
	return s == StatStrikeouts
}

// IsTeamLevel reports whether the statistic describes a team rather than a player.
func (s Statistic) IsTeamLevel() bool {
	return s == StatMoneyline
}

var hardDefaults = map[Sport]map[Statistic]float64{
	SportNBA: {
		StatPoints: 15, StatRebounds: 5, StatAssists: 3.5, StatPRA: 24, StatThrees: 1.5, StatMoneyline: 0.5,
	},
	SportWNBA: {
		StatPoints: 11, StatRebounds: 4.5, StatAssists: 2.5, StatPRA: 18, StatThrees: 1.2, StatMoneyline: 0.5,
	},
	SportMLB: {
		StatStrikeouts: 5.0, StatHits: 0.9, StatTotalBases: 1.4, StatHomeRuns: 0.15, StatMoneyline: 0.5,
	},
	SportNFL: {
		StatPassingYards: 220, StatRushingYards: 55, StatReceivingYards: 45,
		StatReceptions: 3.5, StatPassingTDs: 1.4, StatMoneyline: 0.5,
	},
}

// HardDefault is the last-resort mean for a sport and statistic.
func HardDefault(sport Sport, stat Statistic) float64 {
	if v, ok := hardDefaults[sport][stat]; ok {
		return v
	}
	return 1.0
}
