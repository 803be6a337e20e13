package market

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// DefaultNeutralBand is the absolute edge below which movement is ignored.
const DefaultNeutralBand = 0.005

// CalculateCLV measures how the market moved on the picked side between the
// opening price and the current (or closing) price. Both prices must belong to
// the same side. Shortening prices yield a positive, favorable edge.
func CalculateCLV(openingPrice, currentPrice int, neutralBand float64) (*models.CLVResult, bool) {
	if openingPrice == 0 || currentPrice == 0 {
		return nil, false
	}

	opening := AmericanToImplied(openingPrice)
	current := AmericanToImplied(currentPrice)
	edge := current - opening
	direction, favorability := models.CLVNone, models.Neutral
	switch {
	case edge > neutralBand:
		direction, favorability = models.CLVPositive, models.Favorable
	case edge < -neutralBand:
		direction, favorability = models.CLVNegative, models.Unfavorable
	}

	percent, _ := decimal.NewFromFloat(edge * 100).Round(2).Float64()
	return &models.CLVResult{
		OpeningPrice:       openingPrice,
		CurrentPrice:       currentPrice,
		OpeningImpliedProb: opening,
		CurrentImpliedProb: current,
		Edge:               edge,
		Percent:            percent,
		Direction:          direction,
		Favorability:       favorability,
	}, true
}
