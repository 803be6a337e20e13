package evaluator

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/prop-evaluator/internal/features"
	"github.com/yourusername/prop-evaluator/internal/housebias"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/probability"
)

// EvaluationContext carries one evaluation through the pipeline. Stages take
// it by value and return an augmented copy; slices are cloned before append.
type EvaluationContext struct {
	ID        uuid.UUID
	StartedAt time.Time
	Request   models.EvaluationRequest
	Parsed    models.ParsedRequest

	Collection features.Collection
	Endpoints  []string
	Odds       *models.OddsSnapshot
	Quotes     []models.BookQuote

	Estimate      probability.Estimate
	Bias          housebias.Analysis
	AdjustedModel float64
	MarketProb    *float64
	SharpProb     *float64
	Fused         float64
	CLV           *models.CLVResult

	Pick       models.Pick
	Confidence float64
	Decision   models.Decision
	Stake      float64
	Gated      bool

	Flags   []string
	Drivers []string
}

func (c EvaluationContext) withFlags(flags ...string) EvaluationContext {
	c.Flags = append(slices.Clone(c.Flags), flags...)
	return c
}

func (c EvaluationContext) withDrivers(drivers ...string) EvaluationContext {
	c.Drivers = append(slices.Clone(c.Drivers), drivers...)
	return c
}

func (c EvaluationContext) withEndpoint(endpoint string) EvaluationContext {
	if endpoint == "" || slices.Contains(c.Endpoints, endpoint) {
		return c
	}
	c.Endpoints = append(slices.Clone(c.Endpoints), endpoint)
	return c
}

// result renders the context as the public result.
func (c EvaluationContext) result(now time.Time) *models.EvaluationResult {
	endpoints := slices.Clone(c.Endpoints)
	if endpoints == nil {
		endpoints = []string{}
	}
	drivers := slices.Clone(c.Drivers)
	if drivers == nil {
		drivers = []string{}
	}
	fs := c.Collection.Features
	if fs.RecentSample == nil {
		fs.RecentSample = []float64{}
	}
	raw := models.RawNumbers{
		UsedAverage:      fs.UsedAverage,
		SampleSize:       fs.SampleSize(),
		Variance:         fs.Variance,
		ModelProbability: c.Estimate.Probability,
	}
	if c.Estimate.StdDev > 0 {
		raw.Variance = c.Estimate.StdDev * c.Estimate.StdDev
	}
	if !math.IsNaN(c.Parsed.Line) && !c.Parsed.Statistic.IsTeamLevel() {
		line := c.Parsed.Line
		raw.Line = &line
	}

	res := &models.EvaluationResult{
		EvaluationID:        c.ID,
		Sport:               c.Parsed.Sport,
		SubjectName:         c.Request.SubjectName,
		StatisticLine:       c.Request.StatisticLine,
		Pick:                c.Pick,
		Decision:            c.Decision,
		Confidence:          c.Confidence,
		ModelProbability:    c.Estimate.Probability,
		MarketProbability:   c.MarketProb,
		FusedProbability:    c.Fused,
		BiasMagnitude:       c.Bias.Magnitude,
		SuggestedStakeUnits: c.Stake,
		DataSource:          fs.DataSource,
		RawNumbers:          raw,
		Features:            fs,
		Odds:                c.Odds,
		CLV:                 c.CLV,
		TopDrivers:          drivers,
		Flags:               models.FlagSet(c.Flags),
		EndpointsUsed:       endpoints,
		EvaluatedAt:         now,
	}
	if c.Collection.Identity != nil {
		res.MatchedName = c.Collection.Identity.Name
	}
	return res
}
