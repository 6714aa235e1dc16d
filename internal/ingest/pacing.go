package ingest

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outbound calls. Wait is called after every unit fetch and
// every detail fetch; it returns early with ctx.Err() on cancellation.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant duration after each call.
type FixedDelay time.Duration

// Wait implements Pacer.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TokenBucket allows short bursts while holding a steady average rate.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token-bucket pacer. A burst below 1 is raised to 1.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait implements Pacer.
func (b *TokenBucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// NoDelay never waits. Used for tests and dry runs against fixtures.
type NoDelay struct{}

// Wait implements Pacer.
func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }

// NewPacer builds a pacer from a policy name ("fixed", "token-bucket",
// "none") and the adapter's per-call delay.
func NewPacer(policy string, delay time.Duration) (Pacer, error) {
	switch policy {
	case "", "fixed":
		return FixedDelay(delay), nil
	case "token-bucket":
		if delay <= 0 {
			return NoDelay{}, nil
		}
		return NewTokenBucket(float64(time.Second)/float64(delay), 3), nil
	case "none":
		return NoDelay{}, nil
	default:
		return nil, &ConfigError{Key: "PACING", Message: "unknown pacing policy " + policy}
	}
}
