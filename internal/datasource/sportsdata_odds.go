package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// FetchOdds prices a proposition from the provider's odds endpoints.
func (c *SportsDataClient) FetchOdds(ctx context.Context, q OddsQuery) (OddsBoard, error) {
	if q.Statistic == models.StatMoneyline {
		return c.fetchGameOdds(ctx, q)
	}
	return c.fetchPropOdds(ctx, q)
}

func (c *SportsDataClient) fetchPropOdds(ctx context.Context, q OddsQuery) (OddsBoard, error) {
	ep := endpoint{sport: q.Sport.PathSegment(), group: "odds", name: "PlayerPropsByDate", params: []string{providerDate(q.Date)}}
	recs, _, err := fetchRecords[playerPropRecord](ctx, c, ep, c.ttls.Odds)
	if err != nil {
		c.degraded(ep, err)
		return OddsBoard{}, err
	}

	board := OddsBoard{Source: models.OddsSourcePrimary, Endpoint: ep.signature()}
	for _, r := range recs {
		if r.OverUnder == nil || r.OverPayout == nil || r.UnderPayout == nil {
			continue
		}
		if !subjectMatches(q, r.PlayerID, r.Name) {
			continue
		}
		if stat, _, ok := models.ParseStatisticLine(r.Description); !ok || stat != q.Statistic {
			continue
		}
		board.Quotes = append(board.Quotes, models.BookQuote{
			Bookmaker:         r.Sportsbook,
			Line:              *r.OverUnder,
			OverPrice:         *r.OverPayout,
			UnderPrice:        *r.UnderPayout,
			OpeningOverPrice:  r.OpeningOverPayout,
			OpeningUnderPrice: r.OpeningUnderPayout,
		})
	}
	board.Opening, board.OpeningUnder = openingPrices(board.Quotes, q.Line)
	if len(board.Quotes) == 0 {
		return board, fmt.Errorf("%s: %w", ep.signature(), models.ErrNoOdds)
	}
	return board, nil
}

func (c *SportsDataClient) fetchGameOdds(ctx context.Context, q OddsQuery) (OddsBoard, error) {
	ep := endpoint{sport: q.Sport.PathSegment(), group: "odds", name: "GameOddsByDate", params: []string{providerDate(q.Date)}}
	recs, _, err := fetchRecords[gameOddsRecord](ctx, c, ep, c.ttls.Odds)
	if err != nil {
		c.degraded(ep, err)
		return OddsBoard{}, err
	}

	board := OddsBoard{Source: models.OddsSourcePrimary, Endpoint: ep.signature()}
	for _, g := range recs {
		home := teamMatches(q.SubjectName, g.HomeTeam, g.HomeTeamName)
		away := teamMatches(q.SubjectName, g.AwayTeam, g.AwayTeamName)
		if home == away {
			continue
		}
		for _, line := range g.PregameOdds {
			subj, other := line.sides(home)
			if subj == nil || other == nil {
				continue
			}
			board.Quotes = append(board.Quotes, models.BookQuote{
				Bookmaker:  line.Sportsbook,
				Line:       0,
				OverPrice:  *subj,
				UnderPrice: *other,
			})
		}
		for _, line := range g.OpeningOdds {
			if subj, other := line.sides(home); subj != nil {
				open := *subj
				board.Opening = &open
				if other != nil {
					openOther := *other
					board.OpeningUnder = &openOther
				}
				break
			}
		}
		break
	}
	if len(board.Quotes) == 0 {
		return board, fmt.Errorf("%s: %w", ep.signature(), models.ErrNoOdds)
	}
	return board, nil
}

// sides returns the subject team's price first.
func (l gameOddsLine) sides(subjectIsHome bool) (*int, *int) {
	if subjectIsHome {
		return l.HomeMoneyLine, l.AwayMoneyLine
	}
	return l.AwayMoneyLine, l.HomeMoneyLine
}

func subjectMatches(q OddsQuery, playerID int, name string) bool {
	if q.SubjectID > 0 && playerID > 0 {
		return q.SubjectID == playerID
	}
	return models.NormalizeName(name) == models.NormalizeName(q.SubjectName)
}

// teamMatches accepts an abbreviation match or every subject token appearing in a full name.
func teamMatches(subject string, names ...string) bool {
	want := models.NameTokens(subject)
	if len(want) == 0 {
		return false
	}
	for _, n := range names {
		if n == "" {
			continue
		}
		if models.NormalizeName(n) == models.NormalizeName(subject) {
			return true
		}
		have := " " + models.NormalizeName(n) + " "
		all := true
		for _, tok := range want {
			if !strings.Contains(have, " "+tok+" ") {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// openingPrices picks the opening over and under prices of the first quote at
// the requested line that carries an opening over price, or at any line when
// the request has none. Both sides come from the same quote.
func openingPrices(quotes []models.BookQuote, line float64) (over, under *int) {
	for _, q := range quotes {
		if q.OpeningOverPrice == nil || !q.AtLine(line) {
			continue
		}
		open := *q.OpeningOverPrice
		over = &open
		if q.OpeningUnderPrice != nil {
			openUnder := *q.OpeningUnderPrice
			under = &openUnder
		}
		return over, under
	}
	return nil, nil
}
