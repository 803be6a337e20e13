// Package probability estimates the chance a statistic clears a line.
package probability

import "math"

// Poisson for discrete counts, Normal for higher-mean, roughly continuous totals.

// PoissonPMF calculates P(X = k) for a Poisson distribution with mean λ.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda <= 0 {
		return 0
	}
	// Log space avoids overflow for large k.
	logProb := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logProb)
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}

// PoissonCDFOver calculates P(X >= k).
func PoissonCDFOver(k int, lambda float64) float64 {
	if k <= 0 {
		return 1
	}
	if lambda <= 0 || float64(k) > poissonTailBound(lambda) {
		return 0
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += PoissonPMF(i, lambda)
	}
	return math.Max(0, 1-sum)
}

// NormalCDF calculates the cumulative distribution function for a normal distribution.
func NormalCDF(x, mean, stddev float64) float64 {
	if stddev <= 0 {
		if x < mean {
			return 0
		}
		return 1
	}
	return 0.5 * (1 + math.Erf((x-mean)/(stddev*math.Sqrt2)))
}

// poissonTailBound is a count past which the Poisson upper tail is
// indistinguishable from zero in float64.
func poissonTailBound(lambda float64) float64 {
	return lambda + 50*math.Sqrt(lambda) + 50
}

// DiscreteThreshold maps a posted line onto the smallest count that clears it.
// Lines beyond the int32 range saturate instead of wrapping.
func DiscreteThreshold(line float64) int {
	t := math.Floor(line + 0.5)
	switch {
	case math.IsNaN(t):
		return 0
	case t > math.MaxInt32:
		return math.MaxInt32
	case t < math.MinInt32:
		return math.MinInt32
	}
	return int(t)
}

// PoissonOver is the probability a Poisson count clears the line. It is
// non-increasing in line for any lambda.
func PoissonOver(line, lambda float64) float64 {
	if math.IsNaN(line) {
		return 0
	}
	if line < 0 {
		return 1
	}
	return PoissonCDFOver(DiscreteThreshold(line), lambda)
}

// NormalOver is the probability a normal variable clears the line, with a
// half-unit continuity correction added to the line.
func NormalOver(line, mean, stddev float64) float64 {
	return 1 - NormalCDF(line+0.5, mean, stddev)
}

// SampleVariance returns the unbiased variance of values, or false with fewer than two.
func SampleVariance(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return ss / float64(len(values)-1), true
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
