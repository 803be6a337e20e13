// Package housebias detects lines that look shaded against the bettor and
// discounts the model accordingly.
package housebias

import (
	"math"

	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/probability"
)

// Config holds detection thresholds and bias increments.
type Config struct {
	RecencySpike        float64 // last-3 mean over prior mean
	RecencyLineMargin   float64 // line over average
	InflatedPercent     float64
	DeflatedPercent     float64
	VolatilityCV        float64
	RecencyIncrement    float64
	InflatedIncrement   float64
	DeflatedIncrement   float64
	VolatilityIncrement float64
	MaxBias             float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		RecencySpike:        0.25,
		RecencyLineMargin:   0.12,
		InflatedPercent:     18,
		DeflatedPercent:     -18,
		VolatilityCV:        0.4,
		RecencyIncrement:    0.08,
		InflatedIncrement:   0.06,
		DeflatedIncrement:   0.06,
		VolatilityIncrement: 0.05,
		MaxBias:             0.25,
	}
}

// Analysis is the outcome of one bias check.
type Analysis struct {
	DeltaPercent     float64  `json:"deltaPercent"`
	RecencyTrap      bool     `json:"recencyTrap"`
	Inflated         bool     `json:"inflated"`
	Deflated         bool     `json:"deflated"`
	HighVolatility   bool     `json:"highVolatility"`
	CoefficientOfVar float64  `json:"coefficientOfVariation"`
	Magnitude        float64  `json:"magnitude"`
	Flags            []string `json:"flags"`
}

// Analyzer applies the configured rules.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze inspects the line against the average and the recent sample
// (newest first).
func (a *Analyzer) Analyze(line, average float64, recent []float64) Analysis {
	var out Analysis
	hasLine := !math.IsNaN(line)

	if hasLine && average > 0 {
		out.DeltaPercent = (line - average) / average * 100
		if out.DeltaPercent > a.cfg.InflatedPercent {
			out.Inflated = true
			out.Magnitude += a.cfg.InflatedIncrement
			out.Flags = append(out.Flags, models.FlagInflatedLine)
		} else if out.DeltaPercent < a.cfg.DeflatedPercent {
			out.Deflated = true
			out.Magnitude += a.cfg.DeflatedIncrement
			out.Flags = append(out.Flags, models.FlagDeflatedLine)
		}
	}

	if hasLine && average > 0 && len(recent) > 3 {
		last3 := probability.Mean(recent[:3])
		prior := probability.Mean(recent[3:])
		if prior > 0 && last3 > prior*(1+a.cfg.RecencySpike) && line > average*(1+a.cfg.RecencyLineMargin) {
			out.RecencyTrap = true
			out.Magnitude += a.cfg.RecencyIncrement
			out.Flags = append(out.Flags, models.FlagRecencyTrap)
		}
	}

	if len(recent) >= probability.MinVarianceSample {
		mean := probability.Mean(recent)
		if variance, ok := probability.SampleVariance(recent); ok && mean > 0 {
			out.CoefficientOfVar = math.Sqrt(variance) / mean
			if out.CoefficientOfVar > a.cfg.VolatilityCV {
				out.HighVolatility = true
				out.Magnitude += a.cfg.VolatilityIncrement
				out.Flags = append(out.Flags, models.FlagHighVolatility)
			}
		}
	}

	out.Magnitude = math.Min(out.Magnitude, a.cfg.MaxBias)
	return out
}

// Adjust shrinks the favoured side's probability toward 0.5 by the bias
// magnitude. p is the over probability. The favoured side never gains.
func Adjust(p, magnitude float64) float64 {
	if magnitude <= 0 {
		return p
	}
	if magnitude > 1 {
		magnitude = 1
	}
	return 0.5 + (p-0.5)*(1-magnitude)
}
