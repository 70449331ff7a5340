// Package ratelimit provides keyed request limiting over a fixed time window.
// Buckets are identified by an opaque key (typically client IP plus the
// logical operation name) and reset when their window elapses.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
// Implementations must make the increment-and-compare atomic per key so two
// concurrent requests at the window boundary never both pass.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	start time.Time
	count int
}

// Memory is an in-process Limiter backed by a mutex-guarded counter map.
// Suitable for single-instance deployments and tests; use Redis when
// running multiple replicas behind a load balancer.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory limiter allowing limit requests per period.
func NewMemory(limit int, period time.Duration) *Memory {
	return &Memory{
		buckets: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow atomically increments the bucket for key and reports whether the
// request fits within the window. It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) >= m.period {
		b = &window{start: now}
		m.buckets[key] = b
	}

	if b.count >= m.limit {
		return false, nil
	}
	b.count++
	return true, nil
}

// Compile-time check that Memory implements Limiter.
var _ Limiter = (*Memory)(nil)
