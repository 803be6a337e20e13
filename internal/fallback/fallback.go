// Package fallback runs ordered alternatives and keeps the first that succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned when every source failed.
var ErrExhausted = errors.New("all sources exhausted")

// Source is one named alternative in a fallback chain.
type Source[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Attempt records the outcome of a source that did not win.
type Attempt struct {
	Name string
	Err  error
}

// Outcome is the winning value plus the failed attempts that preceded it.
type Outcome[T any] struct {
	Value    T
	Source   string
	Attempts []Attempt
}

// FirstSuccess tries each source in order and returns the first success. If
// all fail the returned error joins every failure with ErrExhausted.
func FirstSuccess[T any](ctx context.Context, sources ...Source[T]) (Outcome[T], error) {
	var out Outcome[T]
	errs := make([]error, 0, len(sources)+1)
	errs = append(errs, ErrExhausted)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		v, err := src.Fetch(ctx)
		if err == nil {
			out.Value = v
			out.Source = src.Name
			return out, nil
		}
		out.Attempts = append(out.Attempts, Attempt{Name: src.Name, Err: err})
		errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
	}
	return out, errors.Join(errs...)
}

// Static is a source that always yields v.
func Static[T any](name string, v T) Source[T] {
	return Source[T]{Name: name, Fetch: func(context.Context) (T, error) { return v, nil }}
}
