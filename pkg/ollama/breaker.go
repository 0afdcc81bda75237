package ollama

import (
	"sync/atomic"
	"time"
)

// breaker opens after threshold consecutive failures and lets one call
// through again once reset has passed. A zero threshold never opens.
type breaker struct {
	threshold int32
	reset     time.Duration

	failures  atomic.Int32
	openUntil atomic.Int64 // unix nano
}

func newBreaker(threshold int, reset time.Duration) *breaker {
	return &breaker{threshold: int32(threshold), reset: reset}
}

func (b *breaker) allow() bool {
	if b.threshold <= 0 || b.failures.Load() < b.threshold {
		return true
	}
	if time.Now().UnixNano() < b.openUntil.Load() {
		return false
	}
	// half-open
	b.failures.Store(0)
	return true
}

func (b *breaker) success() { b.failures.Store(0) }

func (b *breaker) failure() {
	if n := b.failures.Add(1); b.threshold > 0 && n >= b.threshold {
		b.openUntil.Store(time.Now().Add(b.reset).UnixNano())
	}
}
