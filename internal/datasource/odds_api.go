package datasource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
)

const oddsAPIName = "odds_api"

var oddsAPISportKeys = map[models.Sport]string{
	models.SportNBA:  "basketball_nba",
	models.SportWNBA: "basketball_wnba",
	models.SportMLB:  "baseball_mlb",
	models.SportNFL:  "americanfootball_nfl",
}

var oddsAPIMarkets = map[models.Statistic]string{
	models.StatPoints:         "player_points",
	models.StatRebounds:       "player_rebounds",
	models.StatAssists:        "player_assists",
	models.StatPRA:            "player_points_rebounds_assists",
	models.StatThrees:         "player_threes",
	models.StatStrikeouts:     "pitcher_strikeouts",
	models.StatHits:           "batter_hits",
	models.StatTotalBases:     "batter_total_bases",
	models.StatHomeRuns:       "batter_home_runs",
	models.StatPassingYards:   "player_pass_yds",
	models.StatPassingTDs:     "player_pass_tds",
	models.StatRushingYards:   "player_rush_yds",
	models.StatReceivingYards: "player_reception_yds",
	models.StatReceptions:     "player_receptions",
	models.StatMoneyline:      "h2h",
}

// OddsAPIConfig configures the fallback odds feed.
type OddsAPIConfig struct {
	BaseURL string
	APIKey  string
	Regions string
	Timeout time.Duration
	TTL     time.Duration
}

// OddsAPIClient is the secondary OddsSource. It never reports an opening price.
type OddsAPIClient struct {
	http    HTTPGetter
	cache   Cache
	cfg     OddsAPIConfig
	baseURL string
	logger  *logger.ProviderLogger
}

type oddsAPIEvent struct {
	ID           string             `json:"id"`
	CommenceTime providerTime       `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key     string          `json:"key"`
	Title   string          `json:"title"`
	Markets []oddsAPIMarket `json:"markets"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Point       *float64 `json:"point"`
}

// NewOddsAPIClient creates the fallback odds client. cache may be nil.
func NewOddsAPIClient(cfg OddsAPIConfig, httpClient HTTPGetter, cache Cache, log *logrus.Logger) *OddsAPIClient {
	if cfg.Regions == "" {
		cfg.Regions = "us"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTLs().Odds
	}
	return &OddsAPIClient{
		http:    httpClient,
		cache:   cache,
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.NewProviderLogger(log, oddsAPIName),
	}
}

// FetchOdds returns every bookmaker's two-sided price for the subject's market.
func (c *OddsAPIClient) FetchOdds(ctx context.Context, q OddsQuery) (OddsBoard, error) {
	sportKey, ok := oddsAPISportKeys[q.Sport]
	market, mok := oddsAPIMarkets[q.Statistic]
	if !ok || !mok {
		return OddsBoard{}, fmt.Errorf("%s: %w", oddsAPIName, models.ErrNoOdds)
	}
	sig := oddsAPIName + ":" + sportKey + ":" + market
	if c.cfg.APIKey == "" {
		return OddsBoard{}, models.NewEvalError(models.KindProviderError, sig, models.ErrNoCredentials)
	}

	start := time.Now()
	events, cached, err := c.events(ctx, sig, sportKey, market)
	if err != nil {
		c.logger.LogDegraded(sig, string(models.KindOf(err)), err)
		return OddsBoard{}, err
	}
	c.logger.LogRequest(sig, len(events), cached, float64(time.Since(start).Milliseconds()))

	board := OddsBoard{Source: models.OddsSourceFallback, Endpoint: sig}
	for _, ev := range events {
		if q.Statistic == models.StatMoneyline {
			board.Quotes = append(board.Quotes, moneylineQuotes(ev, q.SubjectName, market)...)
		} else {
			board.Quotes = append(board.Quotes, propQuotes(ev, q.SubjectName, market)...)
		}
		if len(board.Quotes) > 0 {
			break
		}
	}
	if len(board.Quotes) == 0 {
		return board, fmt.Errorf("%s: %w", sig, models.ErrNoOdds)
	}
	return board, nil
}

func (c *OddsAPIClient) events(ctx context.Context, sig, sportKey, market string) ([]oddsAPIEvent, bool, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, sig); ok {
			var events []oddsAPIEvent
			if err := json.Unmarshal(data, &events); err == nil {
				return events, true, nil
			}
		}
	}

	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("regions", c.cfg.Regions)
	params.Set("oddsFormat", "american")
	params.Set("markets", market)
	endpointURL := fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.baseURL, sportKey, params.Encode())

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.http.Get(callCtx, endpointURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		metrics.RecordProviderRequest(oddsAPIName, "error")
		return nil, false, classify(sig, err)
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest(oddsAPIName, strconv.Itoa(resp.StatusCode))

	if err := statusError(oddsAPIName, resp.StatusCode); err != nil {
		return nil, false, classify(sig, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, false, classify(sig, NewDataSourceError(oddsAPIName, ErrCodeNetworkError, "failed to read response", err))
	}

	var events []oddsAPIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, false, classify(sig, NewDataSourceError(oddsAPIName, ErrCodeInvalidData, "decode events", err))
	}
	if c.cache != nil {
		c.cache.Set(ctx, sig, body, c.cfg.TTL)
	}
	return events, false, nil
}

func moneylineQuotes(ev oddsAPIEvent, subject, market string) []models.BookQuote {
	home := teamMatches(subject, ev.HomeTeam)
	away := teamMatches(subject, ev.AwayTeam)
	if home == away {
		return nil
	}
	subjectTeam, otherTeam := ev.HomeTeam, ev.AwayTeam
	if away {
		subjectTeam, otherTeam = ev.AwayTeam, ev.HomeTeam
	}

	var quotes []models.BookQuote
	for _, bm := range ev.Bookmakers {
		for _, m := range bm.Markets {
			if m.Key != market {
				continue
			}
			var subj, other *int
			for i := range m.Outcomes {
				o := m.Outcomes[i]
				switch o.Name {
				case subjectTeam:
					subj = &m.Outcomes[i].Price
				case otherTeam:
					other = &m.Outcomes[i].Price
				}
			}
			if subj != nil && other != nil {
				quotes = append(quotes, models.BookQuote{Bookmaker: bm.Title, OverPrice: *subj, UnderPrice: *other})
			}
		}
	}
	return quotes
}

func propQuotes(ev oddsAPIEvent, subject, market string) []models.BookQuote {
	want := models.NormalizeName(subject)
	var quotes []models.BookQuote
	for _, bm := range ev.Bookmakers {
		for _, m := range bm.Markets {
			if m.Key != market {
				continue
			}
			// Over and Under arrive as separate outcomes; pair them by line.
			overs := map[float64]int{}
			unders := map[float64]int{}
			var points []float64
			for _, o := range m.Outcomes {
				if o.Point == nil || models.NormalizeName(o.Description) != want {
					continue
				}
				switch strings.ToLower(o.Name) {
				case "over":
					if _, seen := overs[*o.Point]; !seen {
						points = append(points, *o.Point)
					}
					overs[*o.Point] = o.Price
				case "under":
					unders[*o.Point] = o.Price
				}
			}
			for _, p := range points {
				under, ok := unders[p]
				if !ok {
					continue
				}
				quotes = append(quotes, models.BookQuote{
					Bookmaker:  bm.Title,
					Line:       p,
					OverPrice:  overs[p],
					UnderPrice: under,
				})
			}
		}
	}
	return quotes
}
