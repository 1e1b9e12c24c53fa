package toolkit

import (
	"sync"
	"time"
)

// SubmitLimiter rate-limits resource submissions per IP address over a
// sliding window.
type SubmitLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewSubmitLimiter creates a SubmitLimiter that allows max submissions per
// window. Call Stop to end its cleanup goroutine.
func NewSubmitLimiter(max int, window time.Duration) *SubmitLimiter {
	l := &SubmitLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *SubmitLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		l.mu.Lock()
		cutoff := l.now().Add(-l.window)
		for ip, hits := range l.attempts {
			if kept := prune(hits, cutoff); len(kept) == 0 {
				delete(l.attempts, ip)
			} else {
				l.attempts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *SubmitLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Allow reports whether ip may submit and, if so, records the submission.
func (l *SubmitLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := prune(l.attempts[ip], now.Add(-l.window))
	if len(kept) >= l.max {
		l.attempts[ip] = kept
		return false
	}
	l.attempts[ip] = append(kept, now)
	return true
}

// Remaining returns how many submissions ip has left in the current window.
func (l *SubmitLimiter) Remaining(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := prune(l.attempts[ip], l.now().Add(-l.window))
	l.attempts[ip] = kept
	if n := l.max - len(kept); n > 0 {
		return n
	}
	return 0
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
