package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory keeps request timestamps in process. Each instance is isolated, so
// tests and separate services can hold their own.
type Memory struct {
	mu       sync.Mutex
	limits   Limits
	requests map[Category][]time.Time
	now      func() time.Time
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock replaces the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an in-process limiter. A nil limits map uses
// DefaultLimits.
func NewMemory(limits Limits, opts ...MemoryOption) *Memory {
	if limits == nil {
		limits = DefaultLimits()
	}
	m := &Memory{
		limits:   limits,
		requests: make(map[Category][]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Allow(_ context.Context, category Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.limits[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	now := m.now()
	live := m.prune(category, w, now)
	if len(live) >= w.MaxRequests {
		return &LimitedError{Category: category, RetryAfter: w.Window - now.Sub(live[0])}
	}
	m.requests[category] = append(live, now)
	return nil
}

func (m *Memory) RetryAfter(_ context.Context, category Category) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.limits[category]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	now := m.now()
	return retryAfter(m.prune(category, w, now), w, now), nil
}

func (m *Memory) Status(_ context.Context) (map[string]Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make(map[string]Status, len(m.limits))
	for _, category := range Categories {
		w, ok := m.limits[category]
		if !ok {
			continue
		}
		live := m.prune(category, w, now)
		out[category.StatusKey()] = newStatus(len(live), w.MaxRequests, retryAfter(live, w, now))
	}
	return out, nil
}

// prune drops timestamps outside the window and returns the survivors,
// oldest first. Callers hold m.mu.
func (m *Memory) prune(category Category, w Window, now time.Time) []time.Time {
	reqs := m.requests[category]
	i := 0
	for i < len(reqs) && now.Sub(reqs[i]) >= w.Window {
		i++
	}
	live := reqs[i:]
	m.requests[category] = live
	return live
}

func retryAfter(live []time.Time, w Window, now time.Time) time.Duration {
	if len(live) < w.MaxRequests {
		return 0
	}
	return w.Window - now.Sub(live[0])
}
