// Package ratelimit gates expensive image-generation calls behind a shared
// cooldown. At most one call is accepted per cooldown interval; everything
// else is a pure function of the timestamp of the last accepted call, so the
// limiter has no background activity and transitions back to ready lazily.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State names the two limiter states. The transition to StateCoolingDown
// happens on an accepted call; the transition back is purely elapsed time.
type State string

const (
	StateReady       State = "ready"
	StateCoolingDown State = "cooling_down"
)

// Decision is the outcome of one TryAcquire. Wait is zero when accepted and
// otherwise the remaining cooldown, clamped to >= 0.
type Decision struct {
	Accepted bool
	Wait     time.Duration
}

// Status is a read-only snapshot for user-facing status queries.
type Status struct {
	State         State
	Cooldown      time.Duration
	SinceLast     time.Duration // meaningless unless HasPrior
	UntilReady    time.Duration
	HasPrior      bool // false until the first accepted call
	TotalAccepted int64
}

// Config tunes a Limiter. Now is injectable for deterministic tests and
// defaults to time.Now.
type Config struct {
	Cooldown time.Duration
	Now      func() time.Time
}

// Limiter is the shared cooldown gate. One instance is constructed per
// session and injected into every consumer; all state lives behind a mutex,
// so concurrent TryAcquire calls cannot both pass the same interval.
type Limiter struct {
	mu       sync.Mutex
	now      func() time.Time
	cooldown time.Duration
	last     time.Time // zero until the first accepted call
	accepted int64
}

// New builds a Limiter. A zero cooldown is valid and degenerates to
// always-ready; a negative one is a configuration error.
func New(cfg Config) (*Limiter, error) {
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown must not be negative, got %s", cfg.Cooldown)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Limiter{now: cfg.Now, cooldown: cfg.Cooldown}, nil
}

// Cooldown returns the configured interval.
func (l *Limiter) Cooldown() time.Duration {
	return l.cooldown
}

// ready reports readiness and the remaining wait at time t.
// Callers hold l.mu.
func (l *Limiter) ready(t time.Time) (bool, time.Duration) {
	if l.last.IsZero() {
		return true, 0
	}
	remaining := l.cooldown - t.Sub(l.last)
	if remaining <= 0 {
		return true, 0
	}
	return false, remaining
}

// CanProceed reports whether a call would currently be accepted. Pure
// query, no side effect.
func (l *Limiter) CanProceed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, _ := l.ready(l.now())
	return ok
}

// TryAcquire atomically checks readiness and, when ready, records the call.
// The check and the record share one critical section: N racing callers on a
// fresh limiter yield exactly one acceptance.
func (l *Limiter) TryAcquire() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	ok, remaining := l.ready(t)
	if !ok {
		return Decision{Accepted: false, Wait: remaining}
	}
	l.last = t
	l.accepted++
	return Decision{Accepted: true}
}

// Acquire blocks until the limiter accepts a call or ctx is done. Used by
// batch operations that deliberately wait out the cooldown between items;
// interactive callers should prefer TryAcquire and surface the wait.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		d := l.TryAcquire()
		if d.Accepted {
			return nil
		}
		timer := time.NewTimer(d.Wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Status returns a consistent snapshot of the limiter.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	ok, remaining := l.ready(t)
	st := Status{
		Cooldown:      l.cooldown,
		UntilReady:    remaining,
		HasPrior:      !l.last.IsZero(),
		TotalAccepted: l.accepted,
	}
	if st.HasPrior {
		st.SinceLast = t.Sub(l.last)
	}
	if ok {
		st.State = StateReady
	} else {
		st.State = StateCoolingDown
	}
	return st
}

// Reset forgets the last accepted call, returning the limiter to ready.
// The total-accepted counter is preserved.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.last = time.Time{}
	l.mu.Unlock()
}
