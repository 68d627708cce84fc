package ratelimiter

import (
	"sync"
	"time"
)

// RatePolicy defines the cap for a namespace
type RatePolicy struct {
	MaxPerWindow int
	Window       time.Duration
}

// RateLimiter is an in-memory fixed-window counter keyed by namespace and
// key (typically the workspace/tenant ID). Counts are bucketed by window so
// checking and recording an attempt is one atomic operation under the mutex,
// never a read-then-write race. A background goroutine evicts stale buckets.
//
// Example:
//
//	rl := ratelimiter.New()
//	rl.SetPolicy("automation_dispatch", 100, time.Minute)
//
//	if !rl.Allow("automation_dispatch", workspaceID) {
//	    // defer the work, this is throttling not failure
//	}
type RateLimiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter // "namespace:key" -> counter
	policies map[string]RatePolicy     // namespace -> policy
	stop     chan struct{}
	stopOnce sync.Once
}

type windowCounter struct {
	windowStart time.Time
	count       int
}

// New creates a rate limiter and starts its cleanup goroutine. Call Stop
// when the limiter is no longer needed.
func New() *RateLimiter {
	rl := &RateLimiter{
		counters: make(map[string]*windowCounter),
		policies: make(map[string]RatePolicy),
		stop:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// SetPolicy configures the cap for a namespace. Call during initialization
// before Allow is used.
func (rl *RateLimiter) SetPolicy(namespace string, maxPerWindow int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.policies[namespace] = RatePolicy{
		MaxPerWindow: maxPerWindow,
		Window:       window,
	}
}

// Allow reports whether one more attempt fits in the current window for the
// namespace and key, recording the attempt when it does. Namespaces without
// a policy fail closed.
func (rl *RateLimiter) Allow(namespace, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, exists := rl.policies[namespace]
	if !exists {
		return false
	}

	now := time.Now()
	compositeKey := namespace + ":" + key

	counter := rl.counters[compositeKey]
	if counter == nil || now.Sub(counter.windowStart) >= policy.Window {
		counter = &windowCounter{windowStart: now.Truncate(policy.Window)}
		rl.counters[compositeKey] = counter
	}

	if counter.count >= policy.MaxPerWindow {
		return false
	}

	counter.count++
	return true
}

// Remaining returns how many attempts are left in the current window.
// Returns 0 for unknown namespaces.
func (rl *RateLimiter) Remaining(namespace, key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, exists := rl.policies[namespace]
	if !exists {
		return 0
	}

	counter := rl.counters[namespace+":"+key]
	if counter == nil || time.Since(counter.windowStart) >= policy.Window {
		return policy.MaxPerWindow
	}

	remaining := policy.MaxPerWindow - counter.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the counter for the namespace and key
func (rl *RateLimiter) Reset(namespace, key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.counters, namespace+":"+key)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for compositeKey, counter := range rl.counters {
				namespace := compositeKey
				for i := 0; i < len(compositeKey); i++ {
					if compositeKey[i] == ':' {
						namespace = compositeKey[:i]
						break
					}
				}

				policy, exists := rl.policies[namespace]
				if !exists || now.Sub(counter.windowStart) >= 2*policy.Window {
					delete(rl.counters, compositeKey)
				}
			}
			rl.mu.Unlock()

		case <-rl.stop:
			return
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}
