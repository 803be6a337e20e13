// Package market converts sportsbook prices into probabilities and blends
// them with the model's estimate.
package market

import "math"

// AmericanToImplied converts American odds to implied probability.
// Example: -150 → 0.6, +150 → 0.4. Zero odds are invalid and return 0.
func AmericanToImplied(odds int) float64 {
	if odds == 0 {
		return 0
	}

	if odds > 0 {
		return 100.0 / (float64(odds) + 100.0)
	}
	abs := math.Abs(float64(odds))
	return abs / (abs + 100.0)
}

// ImpliedToAmerican is the inverse of AmericanToImplied. Even money maps to -100.
// Probabilities outside (0,1) return 0.
func ImpliedToAmerican(p float64) int {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return 0
	}
	if p >= 0.5 {
		return -int(math.Round(p / (1 - p) * 100))
	}
	return int(math.Round((1 - p) / p * 100))
}

// RemoveVig removes the bookmaker margin from a two-way market by
// normalisation, returning probabilities that sum to 1.
func RemoveVig(impliedA, impliedB float64) (float64, float64) {
	if impliedA <= 0 || impliedB <= 0 {
		return 0, 0
	}
	total := impliedA + impliedB
	return impliedA / total, impliedB / total
}

// RemoveVigFromAmerican converts a two-way American market to vig-free probabilities.
func RemoveVigFromAmerican(oddsA, oddsB int) (float64, float64) {
	return RemoveVig(AmericanToImplied(oddsA), AmericanToImplied(oddsB))
}

// Overround returns the summed implied probability of a two-way market minus one.
func Overround(oddsA, oddsB int) float64 {
	return AmericanToImplied(oddsA) + AmericanToImplied(oddsB) - 1
}
