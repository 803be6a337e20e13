package features

import (
	"strings"

	"github.com/yourusername/prop-evaluator/internal/models"
)

var pitcherPositions = map[string]bool{"P": true, "SP": true, "RP": true}

// participated reports whether a row is a genuine appearance for the statistic.
func participated(stat models.Statistic, row models.GameStatRow) bool {
	switch {
	case row.TeamGame != nil:
		return row.TeamGame.IsClosed
	case row.Basketball != nil:
		return row.Basketball.Minutes > 0
	case row.Baseball != nil:
		b := row.Baseball
		if stat.IsPitching() {
			return b.Innings() > 0 || b.PitchingOuts > 0 || b.BattersFaced > 0 || b.PitchingStarts > 0 ||
				pitcherPositions[strings.ToUpper(row.Position)]
		}
		return b.PlateAppearances > 0 || b.AtBats > 0
	case row.Football != nil:
		return row.Football.Played > 0 || row.Games > 0
	}
	return false
}

// pickValue extracts the statistic from a row. Strikeouts prefer the explicit
// count and are derived from K/9 only when at least minInnings were pitched.
func pickValue(stat models.Statistic, row models.GameStatRow, minInnings float64) (float64, bool) {
	if stat == models.StatMoneyline {
		if row.TeamGame == nil {
			return 0, false
		}
		if row.TeamGame.Won() {
			return 1, true
		}
		return 0, true
	}

	if b := row.Basketball; b != nil {
		switch stat {
		case models.StatPoints:
			return b.Points, true
		case models.StatRebounds:
			return b.Rebounds, true
		case models.StatAssists:
			return b.Assists, true
		case models.StatPRA:
			return b.Points + b.Rebounds + b.Assists, true
		case models.StatThrees:
			return b.ThreePointersMade, true
		}
		return 0, false
	}

	if b := row.Baseball; b != nil {
		switch stat {
		case models.StatStrikeouts:
			if b.Strikeouts != nil {
				return *b.Strikeouts, true
			}
			innings := b.Innings()
			if b.StrikeoutsPerNine != nil && innings >= minInnings {
				return *b.StrikeoutsPerNine * innings / 9, true
			}
			return 0, false
		case models.StatHits:
			return b.Hits, true
		case models.StatTotalBases:
			return b.TotalBases, true
		case models.StatHomeRuns:
			return b.HomeRuns, true
		}
		return 0, false
	}

	if f := row.Football; f != nil {
		switch stat {
		case models.StatPassingYards:
			return f.PassingYards, true
		case models.StatPassingTDs:
			return f.PassingTDs, true
		case models.StatRushingYards:
			return f.RushingYards, true
		case models.StatReceivingYards:
			return f.ReceivingYards, true
		case models.StatReceptions:
			return f.Receptions, true
		}
	}
	return 0, false
}

// gamesFor is the denominator for season ratios: starts for pitchers, games otherwise.
func gamesFor(stat models.Statistic, row models.GameStatRow) float64 {
	if stat.IsPitching() && row.Baseball != nil {
		if row.Baseball.PitchingStarts > 0 {
			return row.Baseball.PitchingStarts
		}
		return float64(row.Started)
	}
	if row.Football != nil && row.Games == 0 {
		return float64(row.Football.Played)
	}
	return float64(row.Games)
}
