package models

import "time"

// GameStatRow is one subject's line for one game as returned by the stat
// provider. Exactly one of the sport sections is populated, matching Sport.
type GameStatRow struct {
	Sport    Sport     `json:"sport"`
	PlayerID int       `json:"player_id"`
	Name     string    `json:"name"`
	Team     string    `json:"team"`
	Opponent string    `json:"opponent"`
	Position string    `json:"position"`
	Date     time.Time `json:"date"`
	Season   int       `json:"season"`
	Week     int       `json:"week,omitempty"`
	Games    int       `json:"games"`
	Started  int       `json:"started"`

	Basketball *BasketballLine `json:"basketball,omitempty"`
	Baseball   *BaseballLine   `json:"baseball,omitempty"`
	Football   *FootballLine   `json:"football,omitempty"`
	TeamGame   *TeamGameLine   `json:"team_game,omitempty"`
}

// BasketballLine holds NBA/WNBA box score fields.
type BasketballLine struct {
	Minutes           float64 `json:"minutes"`
	Points            float64 `json:"points"`
	Rebounds          float64 `json:"rebounds"`
	Assists           float64 `json:"assists"`
	ThreePointersMade float64 `json:"three_pointers_made"`
}

// BaseballLine holds MLB batting and pitching fields. Pointer fields are
// absent when the provider omits them, which matters for strikeout derivation.
type BaseballLine struct {
	AtBats            float64  `json:"at_bats"`
	PlateAppearances  float64  `json:"plate_appearances"`
	Hits              float64  `json:"hits"`
	TotalBases        float64  `json:"total_bases"`
	HomeRuns          float64  `json:"home_runs"`
	InningsPitched    float64  `json:"innings_pitched"`
	PitchingOuts      float64  `json:"pitching_outs"`
	BattersFaced      float64  `json:"batters_faced"`
	PitchingStarts    float64  `json:"pitching_starts"`
	Strikeouts        *float64 `json:"strikeouts,omitempty"`
	StrikeoutsPerNine *float64 `json:"strikeouts_per_nine,omitempty"`
}

// FootballLine holds NFL offensive fields.
type FootballLine struct {
	Played          int     `json:"played"`
	PassingAttempts float64 `json:"passing_attempts"`
	PassingYards    float64 `json:"passing_yards"`
	PassingTDs      float64 `json:"passing_tds"`
	RushingAttempts float64 `json:"rushing_attempts"`
	RushingYards    float64 `json:"rushing_yards"`
	Targets         float64 `json:"targets"`
	Receptions      float64 `json:"receptions"`
	ReceivingYards  float64 `json:"receiving_yards"`
}

// TeamGameLine holds a team's result for one game.
type TeamGameLine struct {
	Score         float64 `json:"score"`
	OpponentScore float64 `json:"opponent_score"`
	IsClosed      bool    `json:"is_closed"`
}

// Innings returns innings pitched, deriving it from outs when only outs are reported.
func (b *BaseballLine) Innings() float64 {
	if b.InningsPitched > 0 {
		return b.InningsPitched
	}
	return b.PitchingOuts / 3
}

// Won reports whether the team won the game.
func (t *TeamGameLine) Won() bool {
	return t.Score > t.OpponentScore
}
