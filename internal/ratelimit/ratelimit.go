// Package ratelimit implements a fixed-window request limiter with named
// pools. The counter state lives behind the Store interface so that the
// in-memory implementation can be swapped for a shared store without
// touching call sites. In-memory state is per-instance and resets on
// restart; an occasional double-count after a restart is acceptable.
package ratelimit

import (
	"sync"
	"time"
)

// Named limiter pools.
const (
	PoolAuth     = "auth"
	PoolAPIWrite = "api_write"
	PoolWaitlist = "waitlist"
)

// Rule is the fixed-window rule for one named pool.
type Rule struct {
	Max    int
	Window time.Duration
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store tracks fixed-window counters per (pool, key). Incr increments the
// counter for the window containing now and returns the updated count along
// with the window's expiry.
type Store interface {
	Incr(pool, key string, window time.Duration, now time.Time) (count int, resetAt time.Time)
}

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the single-process Store implementation.
type MemoryStore struct {
	mu    sync.Mutex
	pools map[string]map[string]*entry
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pools: make(map[string]map[string]*entry)}
}

// Incr implements Store.
func (s *MemoryStore) Incr(pool, key string, window time.Duration, now time.Time) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.pools[pool]
	if !ok {
		keys = make(map[string]*entry)
		s.pools[pool] = keys
	}

	// Drop expired windows while we hold the lock.
	for k, e := range keys {
		if e.resetAt.Before(now) {
			delete(keys, k)
		}
	}

	e, ok := keys[key]
	if !ok || e.resetAt.Before(now) {
		e = &entry{count: 0, resetAt: now.Add(window)}
		keys[key] = e
	}
	e.count++
	return e.count, e.resetAt
}

// Limiter checks requests against the configured pool rules.
type Limiter struct {
	store Store
	rules map[string]Rule
	clock func() time.Time
}

// NewLimiter creates a limiter over the given store and pool rules.
func NewLimiter(store Store, rules map[string]Rule) *Limiter {
	return &Limiter{store: store, rules: rules, clock: time.Now}
}

// Allow records a hit for key in the named pool and reports whether the
// request is within the window's budget. Unknown pools are never limited.
func (l *Limiter) Allow(pool, key string) Decision {
	rule, ok := l.rules[pool]
	if !ok {
		return Decision{Allowed: true, Remaining: 0}
	}

	count, resetAt := l.store.Incr(pool, key, rule.Window, l.clock())
	remaining := rule.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= rule.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
