// Package resolver matches free-text subject names against provider rosters.
package resolver

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/yourusername/prop-evaluator/internal/models"
)

// Match scores.
const (
	ScoreIdentifier  = 1.0
	ScoreExact       = 1.0
	ScoreContainment = 0.95
)

// Config controls approximate matching.
type Config struct {
	Threshold       float64
	AmbiguityMargin float64
}

// DefaultConfig returns the standard matching thresholds.
func DefaultConfig() Config {
	return Config{Threshold: 0.7, AmbiguityMargin: 0.05}
}

// Match is the row chosen for a name together with its identity.
type Match struct {
	Row      models.GameStatRow
	Identity models.ResolvedIdentity
	// RunnerUp is the second-best score, zero when there was no contender.
	RunnerUp float64
}

// Resolver picks the best roster row for a target name. It is stateless and
// safe for concurrent use.
type Resolver struct {
	cfg Config
}

// New creates a resolver.
func New(cfg Config) *Resolver {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	return &Resolver{cfg: cfg}
}

type candidate struct {
	row  models.GameStatRow
	norm string
}

// Resolve returns the matching row, or false when no candidate qualifies.
// idHint is a provider identifier resolved earlier in the same evaluation,
// zero when unknown. Ties always go to the earlier row in provider order.
func (r *Resolver) Resolve(target string, idHint int, rows []models.GameStatRow) (Match, bool) {
	if idHint > 0 {
		for _, row := range rows {
			if row.PlayerID == idHint {
				return newMatch(row, ScoreIdentifier, 0, false), true
			}
		}
	}

	want := models.NormalizeName(target)
	if want == "" {
		return Match{}, false
	}
	candidates := uniqueCandidates(rows)
	if len(candidates) == 0 {
		return Match{}, false
	}

	if m, ok := containmentMatch(want, candidates); ok {
		return m, true
	}
	return r.approximateMatch(want, candidates)
}

// uniqueCandidates keeps the first row per subject, preserving provider order.
func uniqueCandidates(rows []models.GameStatRow) []candidate {
	seen := make(map[string]bool, len(rows))
	out := make([]candidate, 0, len(rows))
	for _, row := range rows {
		key := models.NormalizeName(row.Name)
		if row.PlayerID > 0 {
			key = "id:" + strconv.Itoa(row.PlayerID)
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, candidate{row: row, norm: models.NormalizeName(row.Name)})
	}
	return out
}

func containsAllTokens(candidate, target string) bool {
	for _, tok := range strings.Fields(target) {
		if !strings.Contains(candidate, tok) {
			return false
		}
	}
	return true
}

func containmentMatch(want string, candidates []candidate) (Match, bool) {
	var exact, contained []candidate
	for _, c := range candidates {
		if c.norm == "" {
			continue
		}
		if c.norm == want {
			exact = append(exact, c)
		}
		if containsAllTokens(c.norm, want) {
			contained = append(contained, c)
		}
	}

	switch {
	case len(exact) > 0:
		ambiguous := len(exact) > 1
		runnerUp := 0.0
		if ambiguous {
			runnerUp = ScoreExact
		} else if len(contained) > 1 {
			runnerUp = ScoreContainment
		}
		return newMatch(exact[0].row, ScoreExact, runnerUp, ambiguous), true
	case len(contained) > 0:
		ambiguous := len(contained) > 1
		runnerUp := 0.0
		if ambiguous {
			runnerUp = ScoreContainment
		}
		return newMatch(contained[0].row, ScoreContainment, runnerUp, ambiguous), true
	}
	return Match{}, false
}

func (r *Resolver) approximateMatch(want string, candidates []candidate) (Match, bool) {
	best, second := -1.0, 0.0
	var bestRow models.GameStatRow
	for _, c := range candidates {
		s := Similarity(c.norm, want)
		switch {
		case s > best:
			second = max(best, 0)
			best = s
			bestRow = c.row
		case s > second:
			second = s
		}
	}

	if best <= r.cfg.Threshold {
		return Match{}, false
	}
	ambiguous := second > 0 && best-second < r.cfg.AmbiguityMargin
	return newMatch(bestRow, best, second, ambiguous), true
}

// Similarity is 1 - editDistance / longer length, over normalised names.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func newMatch(row models.GameStatRow, score, runnerUp float64, ambiguous bool) Match {
	return Match{
		Row: row,
		Identity: models.ResolvedIdentity{
			ID:          row.PlayerID,
			Name:        row.Name,
			MatchScore:  score,
			IsAmbiguous: ambiguous,
		},
		RunnerUp: runnerUp,
	}
}
