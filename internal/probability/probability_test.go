package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/prop-evaluator/internal/models"
)

func TestPoissonPMFSumsToOne(t *testing.T) {
	sum := 0.0
	for k := 0; k < 60; k++ {
		sum += PoissonPMF(k, 7.4)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Zero(t, PoissonPMF(-1, 3))
	assert.Zero(t, PoissonPMF(2, 0))
}

func TestPoissonOver(t *testing.T) {
	assert.InDelta(t, 0.6080, PoissonOver(6.5, 7.4), 0.0001)
	assert.InDelta(t, 0.2378, PoissonOver(6.5, 5.0), 0.0001)
	// A whole-number line uses the same threshold as the half line below it.
	assert.InDelta(t, PoissonOver(6.5, 6.0), PoissonOver(7.0, 6.0), 1e-12)
	assert.Equal(t, 1.0, PoissonOver(-0.5, 0))
}

func TestPoissonOverExtremeLines(t *testing.T) {
	lines := []float64{6.5, 30.5, 1e4, 1e9, 2.5e9, 1e23, math.MaxFloat64, math.Inf(1)}
	prev := 1.0
	for _, line := range lines {
		p := PoissonOver(line, 7.4)
		assert.LessOrEqual(t, p, prev, "line %g", line)
		prev = p
	}
	assert.Zero(t, PoissonOver(1e23, 7.4))
	assert.Zero(t, PoissonOver(math.NaN(), 7.4))
	assert.Equal(t, math.MaxInt32, DiscreteThreshold(1e23))
	assert.Equal(t, math.MinInt32, DiscreteThreshold(-1e23))

	est := NewModel().Estimate(models.SportMLB, models.StatStrikeouts, 1e23, models.FeatureSet{UsedAverage: 7.4})
	assert.Zero(t, est.Probability)
}

func TestNormalOver(t *testing.T) {
	assert.InDelta(t, 0.5987, NormalOver(23.5, 25, 4), 0.0001)
	assert.InDelta(t, 0.5, NormalCDF(10, 10, 2), 1e-12)
}

func TestModelMonotonicity(t *testing.T) {
	m := NewModel()
	for _, stat := range []models.Statistic{models.StatStrikeouts, models.StatPoints, models.StatPassingYards} {
		fs := models.FeatureSet{UsedAverage: 20, Variance: 25, RecentSample: []float64{18, 22, 20, 19, 21}}
		prev := 1.0
		for line := 0.5; line < 60; line += 1.0 {
			p := m.Estimate(models.SportNBA, stat, line, fs).Probability
			assert.LessOrEqual(t, p, prev+1e-12, "%s line %.1f", stat, line)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			prev = p
		}

		prev = 0.0
		for mean := 0.5; mean < 60; mean += 1.0 {
			fs.UsedAverage = mean
			p := m.Estimate(models.SportNBA, stat, 20.5, fs).Probability
			assert.GreaterOrEqual(t, p, prev-1e-12, "%s mean %.1f", stat, mean)
			prev = p
		}
	}
}

func TestModelVarianceFloor(t *testing.T) {
	small := models.FeatureSet{UsedAverage: 8, Variance: 0.01, RecentSample: []float64{8, 8}}
	assert.Equal(t, models.StatRebounds.SDFloor(), StdDev(models.StatRebounds, small))

	tight := models.FeatureSet{UsedAverage: 8, Variance: 0.5, RecentSample: []float64{8, 8, 9, 7}}
	assert.Equal(t, models.StatRebounds.SDFloor(), StdDev(models.StatRebounds, tight))

	wide := models.FeatureSet{UsedAverage: 8, Variance: 9, RecentSample: []float64{4, 8, 12, 8}}
	assert.InDelta(t, 3.0, StdDev(models.StatRebounds, wide), 1e-12)
}

func TestModelWithoutLine(t *testing.T) {
	est := NewModel().Estimate(models.SportMLB, models.StatStrikeouts, math.NaN(), models.FeatureSet{UsedAverage: 6})
	assert.False(t, est.HasLine)
	assert.Equal(t, 0.5, est.Probability)
}

func TestModelMoneyline(t *testing.T) {
	fs := models.FeatureSet{UsedAverage: 0.7, RecentSample: []float64{1, 1, 0, 1, 1, 0, 1, 1, 1, 0}}
	est := NewModel().Estimate(models.SportNBA, models.StatMoneyline, math.NaN(), fs)
	assert.Equal(t, models.DistBernoulli, est.Distribution)
	assert.InDelta(t, 8.0/12.0, est.Probability, 1e-12)

	est = NewModel().Estimate(models.SportNBA, models.StatMoneyline, math.NaN(), models.FeatureSet{UsedAverage: 0.5})
	assert.Equal(t, 0.5, est.Probability)
}

func TestSampleVariance(t *testing.T) {
	v, ok := SampleVariance([]float64{7, 8, 6, 9, 7})
	assert.True(t, ok)
	assert.InDelta(t, 1.3, v, 1e-9)

	_, ok = SampleVariance([]float64{7})
	assert.False(t, ok)
	assert.Zero(t, Mean(nil))
}
