package core

// limiter.go bounds how many files are parsed at once.
//
// Loading a file holds the whole upload and its typed columns in memory, so the
// number of simultaneous loads is capped. A caller that finds every slot taken
// waits up to maxWait, then gets ErrTooManyUploads.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyUploads is returned when no load slot frees up in time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

const (
	DefaultMaxConcurrentLoads = 5
	DefaultMaxWaitTime        = 30 * time.Second
)

// LoadLimiter is a counting semaphore with a bounded wait and a drain signal
// for shutdown.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed while active == 0
}

// NewLoadLimiter allows at most maxConcurrent loads. Non-positive arguments
// fall back to the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot, waiting at most maxWait. A cancelled ctx wins over
// the wait timeout. Every successful Acquire must be paired with Release.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.track(1)
		return true
	default:
		return false
	}
}

// Release gives back a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	l.track(-1)
	<-l.slots
}

// Do runs fn while holding a slot.
func (l *LoadLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

func (l *LoadLimiter) track(delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.active
	l.active += delta
	switch {
	case prev == 0 && l.active > 0:
		l.idle = make(chan struct{})
	case prev > 0 && l.active == 0:
		close(l.idle)
	}
}

// ActiveCount returns the number of loads holding a slot.
func (l *LoadLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *LoadLimiter) MaxConcurrent() int { return cap(l.slots) }

func (l *LoadLimiter) Available() int { return cap(l.slots) - len(l.slots) }

// WaitForDrain blocks until no load holds a slot or ctx is done.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	for {
		l.mu.Lock()
		idle, active := l.idle, l.active
		l.mu.Unlock()
		if active == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
			// A new load may have started after idle closed; check again.
		}
	}
}

// LimiterStatus is a point-in-time view of a LoadLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *LoadLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
