// Package ratelimit provides the pacing abstraction injected into the HTTP
// clients. The remote market API penalizes bursts with 429s, so batched
// calls sleep between requests; keeping the policy behind an interface lets
// tests swap in a no-op instead of living with real delays.
package ratelimit

import (
	"context"
	"time"
)

// Pacer blocks the caller until the next call is allowed to go out.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Interval returns a Pacer enforcing a fixed minimum delay between calls.
// The first call passes immediately.
func Interval(d time.Duration) Pacer {
	return &intervalPacer{delay: d}
}

// None returns a Pacer that never blocks.
func None() Pacer { return nopPacer{} }

type intervalPacer struct {
	delay time.Duration
	last  time.Time
}

func (p *intervalPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	if !p.last.IsZero() {
		if wait := p.delay - time.Since(p.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	p.last = time.Now()
	return nil
}

type nopPacer struct{}

func (nopPacer) Wait(context.Context) error { return nil }
