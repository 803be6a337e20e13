// Package access carries the caller identity through a request and decides
// whether the caller still has quota to run an evaluation.
package access

import (
	"context"
	"strings"
)

// DefaultTier applies when the caller does not state a tier.
const DefaultTier = "default"

// Subject is the authenticated caller.
type Subject struct {
	ID   string
	Tier string
}

// Anonymous reports whether the subject carries no identifier.
func (s Subject) Anonymous() bool {
	return s.ID == ""
}

type subjectKey struct{}

// WithSubject returns a context carrying s. An empty tier becomes DefaultTier.
func WithSubject(ctx context.Context, s Subject) context.Context {
	s.Tier = strings.ToLower(strings.TrimSpace(s.Tier))
	if s.Tier == "" {
		s.Tier = DefaultTier
	}
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFrom returns the subject stored in ctx, if any.
func SubjectFrom(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}
