package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatisticLine(t *testing.T) {
	tests := []struct {
		line     string
		stat     Statistic
		expected float64
	}{
		{"Strikeouts 6.5", StatStrikeouts, 6.5},
		{"Points 23.5", StatPoints, 23.5},
		{"PRA 35.5", StatPRA, 35.5},
		{"3-Pointers Made 2.5", StatThrees, 2.5},
		{"Passing Yards 249.5", StatPassingYards, 249.5},
		{"Receiving Yds 61.5", StatReceivingYards, 61.5},
		{"Total Bases 1.5", StatTotalBases, 1.5},
		{"Rebounds o8.5", StatRebounds, 8.5},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			stat, line, ok := ParseStatisticLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.stat, stat)
			assert.InDelta(t, tt.expected, line, 1e-9)
		})
	}
}

func TestParseStatisticLineWithoutThreshold(t *testing.T) {
	stat, line, ok := ParseStatisticLine("Moneyline")
	require.True(t, ok)
	assert.Equal(t, StatMoneyline, stat)
	assert.True(t, math.IsNaN(line))

	_, _, ok = ParseStatisticLine("Longest drive 300")
	assert.False(t, ok)
}

func TestStatisticDistribution(t *testing.T) {
	assert.Equal(t, DistPoisson, StatStrikeouts.Distribution())
	assert.Equal(t, DistNormal, StatRebounds.Distribution())
	assert.Equal(t, DistNormal, StatPassingYards.Distribution())
	assert.Equal(t, DistBernoulli, StatMoneyline.Distribution())
	assert.True(t, StatStrikeouts.SupportedBy(SportMLB))
	assert.False(t, StatStrikeouts.SupportedBy(SportNBA))
	assert.Equal(t, 16.0, StatPoints.VarianceFloor())
}

func TestParseSport(t *testing.T) {
	sp, ok := ParseSport(" mlb ")
	assert.True(t, ok)
	assert.Equal(t, SportMLB, sp)

	_, ok = ParseSport("NHL")
	assert.False(t, ok)
}

func TestNFLWeekFor(t *testing.T) {
	// Labor Day 2024 was 2 September, kickoff Thursday 5 September.
	season, week := NFLWeekFor(time.Date(2024, time.September, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2024, season)
	assert.Equal(t, 1, week)

	season, week = NFLWeekFor(time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2024, season)
	assert.Equal(t, 4, week)

	season, week = NFLWeekFor(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2024, season)
	assert.Equal(t, NFLWeeksPerSeason, week)

	season, week = PreviousNFLWeek(2024, 1)
	assert.Equal(t, 2023, season)
	assert.Equal(t, NFLWeeksPerSeason, week)
}

func TestSeasonFor(t *testing.T) {
	assert.Equal(t, 2025, SportNBA.SeasonFor(time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, SportNBA.SeasonFor(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2024, SportMLB.SeasonFor(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEvaluationRequestCoercesMalformedFields(t *testing.T) {
	payload := `{
		"sport": "MLB",
		"subjectName": "Gerrit Cole",
		"statisticLine": "Strikeouts 6.5",
		"currentPrice": "abc",
		"subjectId": "543037",
		"eventStartTime": "tomorrow"
	}`

	var req EvaluationRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))
	assert.False(t, req.CurrentPrice.Valid)
	assert.True(t, req.SubjectID.Valid)
	assert.Equal(t, 543037, req.SubjectID.Value)
	assert.False(t, req.EventStartTime.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"currentPrice": -110, "eventStartTime": "2024-06-01T18:05:00Z"}`), &req))
	assert.Equal(t, Some(-110), req.CurrentPrice)
	assert.True(t, req.EventStartTime.Valid)
}

func TestFlagSet(t *testing.T) {
	flags := FlagSet([]string{FlagInflatedLine, FlagAmbiguousMatch, FlagInflatedLine})
	assert.Equal(t, []string{FlagAmbiguousMatch, FlagInflatedLine}, flags)
}

func TestErrorKindClassification(t *testing.T) {
	err := NewEvalError(KindInvalidInput, "validate", ErrMissingSport)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.ErrorIs(t, err, ErrMissingSport)
	assert.Equal(t, KindProviderError, KindOf(assert.AnError))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jt realmuto", NormalizeName("J.T. Realmuto"))
	assert.Equal(t, "shai gilgeous alexander", NormalizeName("Shai Gilgeous-Alexander"))
	assert.Equal(t, "deaaron fox", NormalizeName("  De'Aaron   Fox "))
	assert.Equal(t, []string{"gerrit", "cole"}, NameTokens("Gerrit Cole"))
}
