package market

import (
	"math"
	"strings"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// Weights is the convex weighting of the fused probability.
type Weights struct {
	Model  float64
	Market float64
	Sharp  float64
}

// DefaultWeights gives the market the dominant share.
func DefaultWeights() Weights {
	return Weights{Model: 0.40, Market: 0.45, Sharp: 0.15}
}

var sharpBooks = []string{"pinnacle", "circa", "betcris", "bookmaker", "5dimes", "heritage"}

// IsSharpBook reports whether a bookmaker is treated as a sharp signal.
func IsSharpBook(name string) bool {
	n := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	for _, b := range sharpBooks {
		if strings.Contains(n, b) {
			return true
		}
	}
	return false
}

// Consensus averages the vig-free over probability across quotes at the
// requested line. Moneyline quotes match any line (pass NaN).
func Consensus(quotes []models.BookQuote, line float64, filter func(models.BookQuote) bool) (float64, int) {
	sum, n := 0.0, 0
	for _, q := range quotes {
		if !q.AtLine(line) {
			continue
		}
		if filter != nil && !filter(q) {
			continue
		}
		over, _ := RemoveVigFromAmerican(q.OverPrice, q.UnderPrice)
		if over <= 0 {
			continue
		}
		sum += over
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// MarketProbability is the consensus over probability of every quote.
func MarketProbability(quotes []models.BookQuote, line float64) *float64 {
	p, n := Consensus(quotes, line, nil)
	if n == 0 {
		return nil
	}
	return &p
}

// SharpProbability is the consensus over probability of sharp books only.
func SharpProbability(quotes []models.BookQuote, line float64) *float64 {
	p, n := Consensus(quotes, line, func(q models.BookQuote) bool { return IsSharpBook(q.Bookmaker) })
	if n == 0 {
		return nil
	}
	return &p
}

// Fuse blends the model probability with the market and sharp signals. Absent
// signals have their weight redistributed over the present ones so the
// weights still sum to 1. The blend is scaled by calibration and clamped to [0,1].
func Fuse(w Weights, model float64, marketProb, sharpProb *float64, calibration float64) float64 {
	total := w.Model
	acc := w.Model * model
	if marketProb != nil {
		total += w.Market
		acc += w.Market * *marketProb
	}
	if sharpProb != nil {
		total += w.Sharp
		acc += w.Sharp * *sharpProb
	}
	if total <= 0 {
		return Clamp(model)
	}
	if calibration <= 0 {
		calibration = 1
	}
	return Clamp(acc / total * calibration)
}

// Clamp restricts p to [0,1], mapping NaN and infinities to 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
