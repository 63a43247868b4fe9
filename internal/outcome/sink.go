// Package outcome delivers finished-session results to storage and to
// subscribers outside the process.
package outcome

import (
	"context"
	"errors"

	"tictac_arena/internal/domain"
)

// Sink receives each terminal session outcome once.
type Sink interface {
	Record(ctx context.Context, o domain.Outcome) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, o domain.Outcome) error

func (f SinkFunc) Record(ctx context.Context, o domain.Outcome) error {
	return f(ctx, o)
}

// Discard drops every outcome.
var Discard Sink = SinkFunc(func(context.Context, domain.Outcome) error { return nil })

// Multi fans an outcome out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Record(ctx context.Context, o domain.Outcome) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
