package models

import (
	"math"
	"time"
)

// OddsSource identifies which market feed produced a snapshot.
type OddsSource string

const (
	OddsSourcePrimary  OddsSource = "sportsdata"
	OddsSourceFallback OddsSource = "odds_api"
)

// BookQuote is one sportsbook's two-sided price for a proposition. For
// moneylines the over side is the subject team.
type BookQuote struct {
	Bookmaker        string  `json:"bookmaker"`
	Line             float64 `json:"line"`
	OverPrice        int     `json:"overPrice"`
	UnderPrice       int     `json:"underPrice"`
	OpeningOverPrice  *int    `json:"openingOverPrice,omitempty"`
	OpeningUnderPrice *int    `json:"openingUnderPrice,omitempty"`
}

// LineTolerance is how far apart two posted lines may be and still match.
const LineTolerance = 0.01

// AtLine reports whether the quote is posted at line. NaN matches every quote.
func (q BookQuote) AtLine(line float64) bool {
	return math.IsNaN(line) || math.Abs(q.Line-line) <= LineTolerance
}

// OddsSnapshot is the market view captured once per evaluation. The plain
// prices are the over (or subject team) side.
type OddsSnapshot struct {
	Line              float64     `json:"line"`
	OpeningPrice      *int        `json:"openingPrice,omitempty"`
	CurrentPrice      *int        `json:"currentPrice,omitempty"`
	OpeningUnderPrice *int        `json:"openingUnderPrice,omitempty"`
	CurrentUnderPrice *int        `json:"currentUnderPrice,omitempty"`
	Source            OddsSource  `json:"source"`
	CapturedAt        time.Time   `json:"capturedAt"`
	Quotes            []BookQuote `json:"quotes,omitempty"`
}

// SidePrices returns the opening and current price of the picked side.
func (s *OddsSnapshot) SidePrices(pick Pick) (opening, current *int) {
	if s == nil {
		return nil, nil
	}
	switch pick {
	case PickOver, PickWin:
		return s.OpeningPrice, s.CurrentPrice
	case PickUnder, PickLoss:
		return s.OpeningUnderPrice, s.CurrentUnderPrice
	}
	return nil, nil
}

// CLVDirection is the sign of a closing line value edge.
type CLVDirection string

const (
	CLVPositive CLVDirection = "positive"
	CLVNegative CLVDirection = "negative"
	CLVNone     CLVDirection = "none"
)

// Favorability says whether the move helps the bettor.
type Favorability string

const (
	Favorable   Favorability = "favorable"
	Unfavorable Favorability = "unfavorable"
	Neutral     Favorability = "neutral"
)

// CLVResult describes how the price of the picked side moved between opening
// and current.
type CLVResult struct {
	OpeningPrice       int          `json:"openingPrice"`
	CurrentPrice       int          `json:"currentPrice"`
	OpeningImpliedProb float64      `json:"openingImpliedProb"`
	CurrentImpliedProb float64      `json:"currentImpliedProb"`
	Edge               float64      `json:"edge"`
	Percent            float64      `json:"percent"`
	Direction          CLVDirection `json:"direction"`
	Favorability       Favorability `json:"favorability"`
}
