package probability

import (
	"math"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// MinVarianceSample is the smallest sample whose variance is trusted.
const MinVarianceSample = 3

// Estimate is the model's view of one proposition.
type Estimate struct {
	Probability  float64             `json:"probability"`
	Mean         float64             `json:"mean"`
	StdDev       float64             `json:"stdDev"`
	Distribution models.Distribution `json:"distribution"`
	HasLine      bool                `json:"hasLine"`
}

// Model turns a feature set into the probability of the over (or win) side.
type Model struct{}

// NewModel creates a new probability model.
func NewModel() *Model {
	return &Model{}
}

// Estimate computes P(statistic > line). Without a line the estimate is a
// neutral 0.5 and HasLine is false. The result is always within [0,1].
func (m *Model) Estimate(sport models.Sport, stat models.Statistic, line float64, fs models.FeatureSet) Estimate {
	mean := fs.UsedAverage
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		mean = models.HardDefault(sport, stat)
	}
	est := Estimate{Mean: mean, Distribution: stat.Distribution(), HasLine: true}

	switch est.Distribution {
	case models.DistBernoulli:
		est.Probability = winProbability(fs, mean)
		est.StdDev = math.Sqrt(est.Probability * (1 - est.Probability))
		return est
	case models.DistPoisson:
		est.StdDev = math.Sqrt(math.Max(mean, 0))
	default:
		est.StdDev = StdDev(stat, fs)
	}

	if math.IsNaN(line) {
		est.HasLine = false
		est.Probability = 0.5
		return est
	}

	if est.Distribution == models.DistPoisson {
		est.Probability = PoissonOver(line, mean)
	} else {
		est.Probability = NormalOver(line, mean, est.StdDev)
	}
	est.Probability = clamp(est.Probability)
	return est
}

// StdDev returns the floored standard deviation for the normal model. Small
// samples fall back to the statistic's variance floor.
func StdDev(stat models.Statistic, fs models.FeatureSet) float64 {
	variance := fs.Variance
	if fs.SampleSize() < MinVarianceSample || variance <= 0 || math.IsNaN(variance) {
		variance = stat.VarianceFloor()
	}
	return math.Max(math.Sqrt(variance), stat.SDFloor())
}

// winProbability is a Laplace-smoothed win rate over the recent results.
func winProbability(fs models.FeatureSet, mean float64) float64 {
	n := len(fs.RecentSample)
	if n == 0 {
		return clamp(mean)
	}
	wins := 0.0
	for _, v := range fs.RecentSample {
		wins += v
	}
	return clamp((wins + 1) / float64(n+2))
}

func clamp(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
