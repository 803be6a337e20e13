package datasource

import (
	"bytes"
	"strings"
	"time"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// providerTime accepts the provider's zone-less timestamps as well as RFC3339.
type providerTime struct {
	time.Time
}

var providerTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func (t *providerTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}
	for _, layout := range providerTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unknown formats leave the date empty rather than failing the payload.
	return nil
}

// playerGameRecord is the union of the per-sport player stat payloads.
type playerGameRecord struct {
	PlayerID int          `json:"PlayerID"`
	Name     string       `json:"Name"`
	Team     string       `json:"Team"`
	Opponent string       `json:"Opponent"`
	Position string       `json:"Position"`
	Day      providerTime `json:"Day"`
	GameDate providerTime `json:"GameDate"`
	Season   int          `json:"Season"`
	Week     int          `json:"Week"`
	Games    int          `json:"Games"`
	Started  int          `json:"Started"`

	Minutes           float64 `json:"Minutes"`
	Points            float64 `json:"Points"`
	Rebounds          float64 `json:"Rebounds"`
	Assists           float64 `json:"Assists"`
	ThreePointersMade float64 `json:"ThreePointersMade"`

	AtBats                           float64  `json:"AtBats"`
	PlateAppearances                 float64  `json:"PlateAppearances"`
	Hits                             float64  `json:"Hits"`
	TotalBases                       float64  `json:"TotalBases"`
	HomeRuns                         float64  `json:"HomeRuns"`
	InningsPitchedDecimal            float64  `json:"InningsPitchedDecimal"`
	PitchingOuts                     float64  `json:"PitchingOuts"`
	PitchingBattersFaced             float64  `json:"PitchingBattersFaced"`
	PitchingGamesStarted             float64  `json:"PitchingGamesStarted"`
	PitchingStrikeouts               *float64 `json:"PitchingStrikeouts"`
	PitchingStrikeoutsPerNineInnings *float64 `json:"PitchingStrikeoutsPerNineInnings"`

	Played            int     `json:"Played"`
	PassingAttempts   float64 `json:"PassingAttempts"`
	PassingYards      float64 `json:"PassingYards"`
	PassingTouchdowns float64 `json:"PassingTouchdowns"`
	RushingAttempts   float64 `json:"RushingAttempts"`
	RushingYards      float64 `json:"RushingYards"`
	ReceivingTargets  float64 `json:"ReceivingTargets"`
	Receptions        float64 `json:"Receptions"`
	ReceivingYards    float64 `json:"ReceivingYards"`
}

func (r *playerGameRecord) date() time.Time {
	if !r.Day.IsZero() {
		return r.Day.Time
	}
	return r.GameDate.Time
}

func (r *playerGameRecord) toRow(sport models.Sport) models.GameStatRow {
	row := models.GameStatRow{
		Sport:    sport,
		PlayerID: r.PlayerID,
		Name:     r.Name,
		Team:     r.Team,
		Opponent: r.Opponent,
		Position: r.Position,
		Date:     r.date(),
		Season:   r.Season,
		Week:     r.Week,
		Games:    r.Games,
		Started:  r.Started,
	}

	switch sport {
	case models.SportNBA, models.SportWNBA:
		row.Basketball = &models.BasketballLine{
			Minutes:           r.Minutes,
			Points:            r.Points,
			Rebounds:          r.Rebounds,
			Assists:           r.Assists,
			ThreePointersMade: r.ThreePointersMade,
		}
	case models.SportMLB:
		row.Baseball = &models.BaseballLine{
			AtBats:            r.AtBats,
			PlateAppearances:  r.PlateAppearances,
			Hits:              r.Hits,
			TotalBases:        r.TotalBases,
			HomeRuns:          r.HomeRuns,
			InningsPitched:    r.InningsPitchedDecimal,
			PitchingOuts:      r.PitchingOuts,
			BattersFaced:      r.PitchingBattersFaced,
			PitchingStarts:    r.PitchingGamesStarted,
			Strikeouts:        r.PitchingStrikeouts,
			StrikeoutsPerNine: r.PitchingStrikeoutsPerNineInnings,
		}
	case models.SportNFL:
		row.Football = &models.FootballLine{
			Played:          r.Played,
			PassingAttempts: r.PassingAttempts,
			PassingYards:    r.PassingYards,
			PassingTDs:      r.PassingTouchdowns,
			RushingAttempts: r.RushingAttempts,
			RushingYards:    r.RushingYards,
			Targets:         r.ReceivingTargets,
			Receptions:      r.Receptions,
			ReceivingYards:  r.ReceivingYards,
		}
	}
	return row
}

// teamGameRecord is one team's box score line.
type teamGameRecord struct {
	TeamID        int          `json:"TeamID"`
	Team          string       `json:"Team"`
	Name          string       `json:"Name"`
	Opponent      string       `json:"Opponent"`
	Day           providerTime `json:"Day"`
	Season        int          `json:"Season"`
	Week          int          `json:"Week"`
	Score         float64      `json:"Score"`
	OpponentScore float64      `json:"OpponentScore"`
	IsClosed      bool         `json:"IsClosed"`
}

func (r *teamGameRecord) toRow(sport models.Sport) models.GameStatRow {
	name := r.Name
	if name == "" {
		name = r.Team
	}
	return models.GameStatRow{
		Sport:    sport,
		PlayerID: r.TeamID,
		Name:     name,
		Team:     r.Team,
		Opponent: r.Opponent,
		Date:     r.Day.Time,
		Season:   r.Season,
		Week:     r.Week,
		Games:    1,
		TeamGame: &models.TeamGameLine{
			Score:         r.Score,
			OpponentScore: r.OpponentScore,
			IsClosed:      r.IsClosed,
		},
	}
}

// playerPropRecord is one sportsbook's posting for a player proposition.
type playerPropRecord struct {
	PlayerID           int      `json:"PlayerID"`
	Name               string   `json:"Name"`
	Description        string   `json:"Description"`
	Sportsbook         string   `json:"Sportsbook"`
	OverUnder          *float64 `json:"OverUnder"`
	OverPayout         *int     `json:"OverPayout"`
	UnderPayout        *int     `json:"UnderPayout"`
	OpeningOverPayout  *int     `json:"OpeningOverPayout"`
	OpeningUnderPayout *int     `json:"OpeningUnderPayout"`
}

// gameOddsRecord is the moneyline board for one game.
type gameOddsRecord struct {
	HomeTeam     string         `json:"HomeTeam"`
	AwayTeam     string         `json:"AwayTeam"`
	HomeTeamName string         `json:"HomeTeamName"`
	AwayTeamName string         `json:"AwayTeamName"`
	PregameOdds  []gameOddsLine `json:"PregameOdds"`
	OpeningOdds  []gameOddsLine `json:"OpeningOdds"`
}

type gameOddsLine struct {
	Sportsbook    string `json:"Sportsbook"`
	HomeMoneyLine *int   `json:"HomeMoneyLine"`
	AwayMoneyLine *int   `json:"AwayMoneyLine"`
}
