package signature

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Source that has no signature for a hash.
var ErrNotFound = errors.New("signature not found")

// Source is a best-effort remote signature database.
type Source interface {
	Name() string
	LookupFunction(ctx context.Context, selector string) (string, error)
	LookupEvent(ctx context.Context, topic string) (string, error)
}

// Chain tries each source in order and returns the first hit. Every source is
// independent: an error from one moves on to the next.
type Chain []Source

var _ Source = Chain(nil)

func (c Chain) Name() string { return "chain" }

func (c Chain) LookupFunction(ctx context.Context, selector string) (string, error) {
	return c.lookup(ctx, Function, selector)
}

func (c Chain) LookupEvent(ctx context.Context, topic string) (string, error) {
	return c.lookup(ctx, Event, topic)
}

func (c Chain) lookup(ctx context.Context, kind Kind, hash string) (string, error) {
	var errs []error
	for _, s := range c {
		sig, err := lookup(ctx, s, kind, hash)
		if err == nil && sig != "" {
			return sig, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", ErrNotFound
}

func lookup(ctx context.Context, s Source, kind Kind, hash string) (string, error) {
	if kind == Event {
		return s.LookupEvent(ctx, hash)
	}
	return s.LookupFunction(ctx, hash)
}
