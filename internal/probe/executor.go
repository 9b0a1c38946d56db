// Package probe measures the signature sources the registry depends on.
package probe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Named is anything with a display name, such as a signature.Source.
type Named interface {
	Name() string
}

// Result wraps the outcome of fn for one target.
type Result[T any] struct {
	Name  string
	Index int
	Value T
	Err   error
}

// ExecuteAll runs fn concurrently for each target and returns results in target
// order. It never fails fast: every target runs and its error is kept in its Result.
func ExecuteAll[S Named, T any](ctx context.Context, targets []S, fn func(context.Context, S) (T, error)) []Result[T] {
	results := make([]Result[T], len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			val, err := fn(gctx, target)
			results[i] = Result[T]{
				Name:  target.Name(),
				Index: i,
				Value: val,
				Err:   err,
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
