// Package datasource talks to the external stat and odds providers.
package datasource

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/yourusername/prop-evaluator/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FetchResult is the non-throwing outcome of one gateway call. Endpoint is
// set only when the rows came from a successful remote call or from a cache
// entry written by one.
type FetchResult struct {
	Rows     []models.GameStatRow
	Endpoint string
	Cached   bool
	Err      error
}

// OK reports whether the call produced usable data.
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// StatProvider supplies historical per-game rows.
type StatProvider interface {
	FetchByDate(ctx context.Context, sport models.Sport, date time.Time) FetchResult
	FetchSeasonTotals(ctx context.Context, sport models.Sport, season int) FetchResult
	FetchWeek(ctx context.Context, season, week int) FetchResult
	FetchTeamGamesByDate(ctx context.Context, sport models.Sport, date time.Time) FetchResult
	FetchTeamGamesByWeek(ctx context.Context, season, week int) FetchResult
}

// OddsQuery identifies the market an evaluation needs priced.
type OddsQuery struct {
	Sport       models.Sport
	Date        time.Time
	SubjectID   int
	SubjectName string
	Statistic   models.Statistic
	Line        float64
	Opponent    string
}

// OddsBoard is every book quote found for one market.
// Opening is the over (or subject team) side, OpeningUnder the other side.
type OddsBoard struct {
	Quotes       []models.BookQuote
	Opening      *int
	OpeningUnder *int
	Source       models.OddsSource
	Endpoint     string
}

// OddsSource prices a proposition. An empty board is reported as models.ErrNoOdds.
type OddsSource interface {
	FetchOdds(ctx context.Context, q OddsQuery) (OddsBoard, error)
}

// Cache is the payload cache consulted before every remote call.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// TTLs controls how long each endpoint family stays cached.
type TTLs struct {
	Stats  time.Duration
	Season time.Duration
	Odds   time.Duration
}

// DefaultTTLs returns the standard cache lifetimes.
func DefaultTTLs() TTLs {
	return TTLs{
		Stats:  6 * time.Hour,
		Season: 12 * time.Hour,
		Odds:   5 * time.Minute,
	}
}
