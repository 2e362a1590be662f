package ogcard

import (
	"sync"
	"time"
)

// AttemptLimiter counts attempts per key (usually a client IP) in a sliding
// window.
type AttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewAttemptLimiter creates a limiter that allows max attempts per window.
// Close stops its cleanup goroutine.
func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	l := &AttemptLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *AttemptLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-l.window)
			l.mu.Lock()
			for key, hits := range l.attempts {
				if kept := prune(hits, cutoff); len(kept) == 0 {
					delete(l.attempts, key)
				} else {
					l.attempts[key] = kept
				}
			}
			l.mu.Unlock()
		}
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Check reports whether key is still under the limit. It does not record an
// attempt; call Record for each failure.
func (l *AttemptLimiter) Check(key string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.attempts[key], cutoff)
	l.attempts[key] = kept
	return len(kept) < l.max
}

// Record registers an attempt for key.
func (l *AttemptLimiter) Record(key string) {
	l.mu.Lock()
	l.attempts[key] = append(l.attempts[key], time.Now())
	l.mu.Unlock()
}

// Reset forgets all attempts for key.
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.attempts, key)
	l.mu.Unlock()
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (l *AttemptLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
