package evaluator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// Thresholds maps confidence to decisions and stakes.
type Thresholds struct {
	Lock               float64
	StrongLean         float64
	Lean               float64
	LowConfidence      float64
	GateCap            float64
	MinSample          int
	MinStake           float64
	MaxStake           float64
	MaxStakeConfidence float64
	BiasPenalty        float64
}

// DefaultThresholds returns the standard decision tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Lock:               70,
		StrongLean:         67.5,
		Lean:               65,
		LowConfidence:      55,
		GateCap:            49.9,
		MinSample:          5,
		MinStake:           1,
		MaxStake:           5,
		MaxStakeConfidence: 75,
		BiasPenalty:        0.10,
	}
}

// gate forces PASS when the evaluation rests on no real data or too small a
// sample. It returns the capped confidence and the flags that triggered it.
func (t Thresholds) gate(confidence float64, endpoints, sampleSize int) (float64, []string, bool) {
	var flags []string
	if endpoints == 0 {
		flags = append(flags, models.FlagNoRealData)
	}
	if sampleSize < t.MinSample {
		flags = append(flags, models.FlagInsufficientSample)
	}
	if len(flags) == 0 {
		return confidence, nil, false
	}
	return math.Min(confidence, t.GateCap), flags, true
}

// classify maps confidence to a decision label.
func (t Thresholds) classify(confidence float64, pick models.Pick) models.Decision {
	switch {
	case confidence >= t.Lock:
		return models.DecisionLock
	case confidence >= t.StrongLean:
		return models.DecisionStrongLean
	case confidence >= t.Lean:
		return models.DecisionLean
	case confidence >= t.LowConfidence && pick != "":
		return models.LowConfidence(pick)
	default:
		return models.DecisionPass
	}
}

// stake scales linearly from MinStake at the LEAN threshold to MaxStake at
// MaxStakeConfidence, halves under heavy house bias, and rounds down to half units.
func (t Thresholds) stake(decision models.Decision, confidence, bias float64) float64 {
	if !decision.IsActionable() {
		return 0
	}
	span := t.MaxStakeConfidence - t.Lean
	units := t.MinStake
	if span > 0 {
		units = t.MinStake + (t.MaxStake-t.MinStake)*(confidence-t.Lean)/span
	}
	units = math.Max(t.MinStake, math.Min(t.MaxStake, units))
	if bias >= t.BiasPenalty && t.BiasPenalty > 0 {
		units /= 2
	}
	halves := decimal.NewFromFloat(units).Mul(decimal.NewFromInt(2)).Floor()
	out, _ := halves.Div(decimal.NewFromInt(2)).Float64()
	return out
}
