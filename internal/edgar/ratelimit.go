package edgar

import (
	"context"
	"sync"
	"time"
)

// Gate throttles outbound requests. The client calls Wait before every
// dispatch; implementations delay the caller rather than rejecting it.
// Tests inject NopGate to run without delays.
type Gate interface {
	Wait(ctx context.Context) error
}

// Limiter enforces a fixed minimum interval between dispatched requests,
// shared across every caller that holds a reference to it. Effective
// throughput to EDGAR is therefore constant no matter how many ingestion
// tasks run concurrently.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewLimiter creates a limiter allowing at most rps requests per second.
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	return &Limiter{interval: time.Duration(float64(time.Second) / rps)}
}

// Wait blocks until this caller's dispatch slot arrives or the context is
// cancelled. Slots are handed out in call order at one per interval.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}
	delay := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopGate never delays. Used in tests.
type NopGate struct{}

// Wait returns immediately.
func (NopGate) Wait(ctx context.Context) error { return ctx.Err() }
