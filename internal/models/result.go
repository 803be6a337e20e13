package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Decision is the recommendation tier.
type Decision string

const (
	DecisionLock       Decision = "LOCK"
	DecisionStrongLean Decision = "STRONG_LEAN"
	DecisionLean       Decision = "LEAN"
	DecisionPass       Decision = "PASS"
	DecisionError      Decision = "ERROR"
)

// LowConfidence returns the decision label for a pick below the LEAN tier.
func LowConfidence(p Pick) Decision {
	return Decision(string(p) + " (Low Confidence)")
}

// IsActionable reports whether the decision carries a stake.
func (d Decision) IsActionable() bool {
	return d == DecisionLock || d == DecisionStrongLean || d == DecisionLean
}

// Pick is the side of the proposition the evaluation favours.
type Pick string

const (
	PickOver  Pick = "OVER"
	PickUnder Pick = "UNDER"
	PickWin   Pick = "WIN"
	PickLoss  Pick = "LOSS"
)

// Flags raised during an evaluation.
const (
	FlagInvalidInput       = "INVALID_INPUT"
	FlagInsufficientSample = "INSUFFICIENT_SAMPLE"
	FlagNoRealData         = "NO_REAL_DATA"
	FlagAmbiguousMatch     = "AMBIGUOUS_MATCH"
	FlagUnresolvedSubject  = "SUBJECT_UNRESOLVED"
	FlagProviderTimeout    = "PROVIDER_TIMEOUT"
	FlagProviderError      = "PROVIDER_ERROR"
	FlagNoCredentials      = "NO_CREDENTIALS"
	FlagLineMissing        = "LINE_MISSING"
	FlagFallbackOdds       = "FALLBACK_ODDS"
	FlagRecencyTrap        = "RECENCY_BIAS_TRAP"
	FlagInflatedLine       = "INFLATED_LINE"
	FlagDeflatedLine       = "DEFLATED_LINE"
	FlagHighVolatility     = "HIGH_VOLATILITY"
	FlagFatal              = "FATAL_ERROR"
)

// EvaluationResult is the structured output of one evaluation.
type EvaluationResult struct {
	EvaluationID        uuid.UUID     `json:"evaluationId"`
	Sport               Sport         `json:"sport"`
	SubjectName         string        `json:"subjectName"`
	StatisticLine       string        `json:"statisticLine"`
	MatchedName         string        `json:"matchedName,omitempty"`
	Pick                Pick          `json:"pick,omitempty"`
	Decision            Decision      `json:"decision"`
	Confidence          float64       `json:"finalConfidencePercent"`
	ModelProbability    float64       `json:"modelProbability"`
	MarketProbability   *float64      `json:"marketProbability,omitempty"`
	FusedProbability    float64       `json:"fusedProbability"`
	BiasMagnitude       float64       `json:"biasMagnitude"`
	SuggestedStakeUnits float64       `json:"suggestedStakeUnits"`
	DataSource          DataSource    `json:"dataSource"`
	RawNumbers          RawNumbers    `json:"rawNumbers"`
	Features            FeatureSet    `json:"features"`
	Odds                *OddsSnapshot `json:"odds,omitempty"`
	CLV                 *CLVResult    `json:"clv,omitempty"`
	TopDrivers          []string      `json:"topDrivers"`
	Flags               []string      `json:"flags"`
	EndpointsUsed       []string      `json:"endpointsUsed"`
	EvaluatedAt         time.Time     `json:"evaluatedAt"`
}

// RawNumbers are the figures the decision was computed from. Line is absent
// for moneylines and unparseable lines.
type RawNumbers struct {
	UsedAverage      float64  `json:"usedAverage"`
	Line             *float64 `json:"line,omitempty"`
	SampleSize       int      `json:"sampleSize"`
	Variance         float64  `json:"variance"`
	ModelProbability float64  `json:"modelProbability"`
}

// HasFlag reports whether the flag was raised.
func (r *EvaluationResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// FlagSet returns a sorted, de-duplicated copy of flags.
func FlagSet(flags []string) []string {
	seen := make(map[string]struct{}, len(flags))
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
