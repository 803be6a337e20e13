package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-evaluator/internal/models"
)

func TestAmericanToImplied(t *testing.T) {
	tests := []struct {
		name     string
		odds     int
		expected float64
	}{
		{"favorite", -150, 0.6},
		{"underdog", 150, 0.4},
		{"standard juice", -110, 0.5238},
		{"even positive", 100, 0.5},
		{"even negative", -100, 0.5},
		{"invalid", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AmericanToImplied(tt.odds), 0.0001)
		})
	}
}

func TestImpliedToAmericanRoundTrip(t *testing.T) {
	for _, odds := range []int{-1000, -400, -250, -150, -130, -110, -105, 105, 120, 150, 250, 400, 900} {
		p := AmericanToImplied(odds)
		back := ImpliedToAmerican(p)
		assert.InDelta(t, odds, back, 1, "odds %d", odds)
		assert.InDelta(t, p, AmericanToImplied(back), 0.001)
	}

	// +100 and -100 are the same price.
	assert.Equal(t, -100, ImpliedToAmerican(AmericanToImplied(100)))
	assert.Equal(t, 0, ImpliedToAmerican(0))
	assert.Equal(t, 0, ImpliedToAmerican(1))
}

func TestRemoveVig(t *testing.T) {
	over, under := RemoveVigFromAmerican(-110, -110)
	assert.InDelta(t, 0.5, over, 1e-9)
	assert.InDelta(t, 0.5, under, 1e-9)

	over, under = RemoveVigFromAmerican(-150, 130)
	assert.InDelta(t, 1.0, over+under, 1e-9)
	assert.Greater(t, over, under)
	assert.Greater(t, Overround(-110, -110), 0.0)

	over, under = RemoveVig(0, 0.5)
	assert.Zero(t, over)
	assert.Zero(t, under)
}

func TestCalculateCLV(t *testing.T) {
	clv, ok := CalculateCLV(-110, -130, DefaultNeutralBand)
	require.True(t, ok)
	assert.InDelta(t, 0.041, clv.Edge, 0.001)
	assert.Equal(t, models.CLVPositive, clv.Direction)
	assert.Equal(t, models.Favorable, clv.Favorability)
	assert.InDelta(t, 4.14, clv.Percent, 0.01)
	assert.InDelta(t, 0.524, clv.OpeningImpliedProb, 0.001)
	assert.InDelta(t, 0.565, clv.CurrentImpliedProb, 0.001)

	clv, ok = CalculateCLV(-130, -110, DefaultNeutralBand)
	require.True(t, ok)
	assert.Equal(t, models.CLVNegative, clv.Direction)
	assert.Equal(t, models.Unfavorable, clv.Favorability)

	clv, ok = CalculateCLV(-110, -111, DefaultNeutralBand)
	require.True(t, ok)
	assert.Equal(t, models.CLVNone, clv.Direction)
	assert.Equal(t, models.Neutral, clv.Favorability)

	_, ok = CalculateCLV(0, -110, DefaultNeutralBand)
	assert.False(t, ok)
}

func TestFuse(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Model+w.Market+w.Sharp, 1e-9)
	assert.GreaterOrEqual(t, w.Market, w.Model)

	mkt, sharp := 0.55, 0.60
	fused := Fuse(w, 0.70, &mkt, &sharp, 1.0)
	assert.InDelta(t, 0.40*0.70+0.45*0.55+0.15*0.60, fused, 1e-9)

	// Missing signals fall back to the model alone.
	assert.InDelta(t, 0.62, Fuse(w, 0.62, nil, nil, 1.0), 1e-9)

	// Calibration can never push the result out of range.
	assert.Equal(t, 1.0, Fuse(w, 0.95, &mkt, nil, 3.0))
	assert.Equal(t, 0.0, Fuse(w, math.NaN(), nil, nil, 1.0))
}

func TestConsensusAndSharpSignal(t *testing.T) {
	quotes := []models.BookQuote{
		{Bookmaker: "DraftKings", Line: 6.5, OverPrice: -120, UnderPrice: 100},
		{Bookmaker: "Pinnacle", Line: 6.5, OverPrice: -130, UnderPrice: 110},
		{Bookmaker: "FanDuel", Line: 7.5, OverPrice: 140, UnderPrice: -170},
	}

	mkt := MarketProbability(quotes, 6.5)
	require.NotNil(t, mkt)
	assert.Greater(t, *mkt, 0.5)

	sharp := SharpProbability(quotes, 6.5)
	require.NotNil(t, sharp)
	pin, _ := RemoveVigFromAmerican(-130, 110)
	assert.InDelta(t, pin, *sharp, 1e-9)

	assert.Nil(t, MarketProbability(quotes, 8.5))
	assert.NotNil(t, MarketProbability(quotes, math.NaN()))
	assert.True(t, IsSharpBook("Circa Sports"))
	assert.False(t, IsSharpBook("BetMGM"))
}
