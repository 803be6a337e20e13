package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/prop-evaluator/internal/housebias"
	"github.com/yourusername/prop-evaluator/internal/market"
	"github.com/yourusername/prop-evaluator/internal/models"
)

// score runs the probability model, the house-bias discount, market fusion
// and CLV.
func (e *Evaluator) score(ec EvaluationContext) EvaluationContext {
	p := ec.Parsed
	fs := ec.Collection.Features

	ec.Estimate = e.model.Estimate(p.Sport, p.Statistic, p.Line, fs)
	ec.AdjustedModel = ec.Estimate.Probability

	if !p.Statistic.IsTeamLevel() && ec.Estimate.HasLine {
		average := fs.UsedAverage
		ec.Bias = e.bias.Analyze(p.Line, average, fs.RecentSample)
		ec = ec.withFlags(ec.Bias.Flags...)
		ec.AdjustedModel = housebias.Adjust(ec.Estimate.Probability, ec.Bias.Magnitude)
	}

	if ec.Estimate.HasLine || p.Statistic.IsTeamLevel() {
		line := quoteLine(p)
		ec.MarketProb = market.MarketProbability(ec.Quotes, line)
		ec.SharpProb = market.SharpProbability(ec.Quotes, line)
	}
	ec.Fused = market.Fuse(e.cfg.Weights, ec.AdjustedModel, ec.MarketProb, ec.SharpProb, e.cfg.Calibration)

	return ec.withDrivers(drivers(ec)...)
}

// decide picks a side, measures CLV on it, applies the safety gate,
// classifies and stakes.
func (e *Evaluator) decide(ec EvaluationContext) EvaluationContext {
	t := e.cfg.Thresholds
	ec.Pick = pickFor(ec.Parsed.Statistic, ec.Fused)
	if opening, current := ec.Odds.SidePrices(ec.Pick); opening != nil && current != nil {
		if clv, ok := market.CalculateCLV(*opening, *current, e.cfg.CLVNeutralBand); ok {
			ec.CLV = clv
			ec = ec.withDrivers(fmt.Sprintf("clv %+.2f%% on %s (%s)", clv.Percent, ec.Pick, clv.Favorability))
		}
	}
	ec.Confidence = math.Max(ec.Fused, 1-ec.Fused) * 100

	confidence, flags, gated := t.gate(ec.Confidence, len(ec.Endpoints), ec.Collection.Features.SampleSize())
	if gated {
		ec.Gated = true
		ec.Confidence = confidence
		ec.Decision = models.DecisionPass
		ec.Stake = 0
		e.evalLog.LogSafetyGate(ec.ID.String(), len(ec.Endpoints), ec.Collection.Features.SampleSize(), strings.Join(flags, ","))
		return ec.withFlags(flags...)
	}

	if !ec.Estimate.HasLine && !ec.Parsed.Statistic.IsTeamLevel() {
		ec.Decision = models.DecisionPass
		return ec
	}

	ec.Decision = t.classify(ec.Confidence, ec.Pick)
	ec.Stake = t.stake(ec.Decision, ec.Confidence, ec.Bias.Magnitude)
	return ec
}

func pickFor(stat models.Statistic, fused float64) models.Pick {
	over := fused >= 0.5
	switch {
	case stat.IsTeamLevel() && over:
		return models.PickWin
	case stat.IsTeamLevel():
		return models.PickLoss
	case over:
		return models.PickOver
	default:
		return models.PickUnder
	}
}

// drivers explains the main inputs behind the score, most influential first.
func drivers(ec EvaluationContext) []string {
	fs := ec.Collection.Features
	var out []string

	if mean, ok := fs.RecentMean(); ok {
		out = append(out, fmt.Sprintf("recent mean %.2f over %d games", mean, fs.SampleSize()))
	}
	if fs.SeasonAverage != nil {
		out = append(out, fmt.Sprintf("season average %.2f", *fs.SeasonAverage))
	}
	out = append(out, fmt.Sprintf("%s mean %.2f from %s", ec.Estimate.Distribution, ec.Estimate.Mean, fs.DataSource))
	if ec.Estimate.HasLine && !ec.Parsed.Statistic.IsTeamLevel() {
		out = append(out, fmt.Sprintf("model %.1f%% over %g", ec.Estimate.Probability*100, ec.Parsed.Line))
	}
	if ec.MarketProb != nil {
		out = append(out, fmt.Sprintf("market consensus %.1f%%", *ec.MarketProb*100))
	}
	if ec.SharpProb != nil {
		out = append(out, fmt.Sprintf("sharp consensus %.1f%%", *ec.SharpProb*100))
	}
	if ec.Bias.Magnitude > 0 {
		out = append(out, fmt.Sprintf("house bias %.2f", ec.Bias.Magnitude))
	}
	return out
}
