package ringqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
)

// BackoffConfig parameterises the exponential retry used when a ring is full
// or empty. A zero MaxElapsedTime retries forever.
type BackoffConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	Multiplier      float64       `yaml:"multiplier"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

// NewBackOff builds the backoff policy described by cfg.
func (cfg BackoffConfig) NewBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		b.Multiplier = cfg.Multiplier
	}
	b.MaxElapsedTime = cfg.MaxElapsedTime
	b.Reset()
	return b
}

// PushWait pushes v, retrying as b dictates. It returns ErrQueueFull once b
// stops, or the context error. Producer only.
func (r *Ring[T]) PushWait(ctx context.Context, v T, b backoff.BackOff) error {
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		if r.Push(v) {
			return nil
		}
		return ErrQueueFull
	}, backoff.WithContext(b, ctx))
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return fmt.Errorf("%w: gave up after %d attempts", err, attempts)
}

// PopWait pops a value, retrying as b dictates. ok is false when b stops
// before a value arrives. Consumer only.
func (r *Ring[T]) PopWait(ctx context.Context, b backoff.BackOff) (v T, ok bool, err error) {
	err = backoff.Retry(func() error {
		if v, ok = r.Pop(); ok {
			return nil
		}
		return errQueueEmpty
	}, backoff.WithContext(b, ctx))
	if err == nil {
		return v, true, nil
	}
	return v, false, ctx.Err()
}
