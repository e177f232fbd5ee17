package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Mutation budget per client. GET traffic is never limited, so the
// window only has to cover form submissions.
const (
	rateLimitWindow      = time.Minute
	rateLimitMaxRequests = 60
)

// rateLimiter enforces a sliding-window request budget per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	quit    chan struct{}
	done    chan struct{}
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string][]time.Time),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// allow records a request for clientIP and reports whether it fits the
// window budget. Rejections are counted on metrics.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	recent := rl.clients[clientIP][:0]
	for _, ts := range rl.clients[clientIP] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= rateLimitMaxRequests {
		rl.clients[clientIP] = recent
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}

	rl.clients[clientIP] = append(recent, now)
	return true
}

// cleanupLoop drops clients whose whole window has aged out, keeping the
// map from growing with one entry per IP ever seen.
func (rl *rateLimiter) cleanupLoop() {
	defer close(rl.done)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropStale()
		case <-rl.quit:
			return
		}
	}
}

func (rl *rateLimiter) dropStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitWindow)
	for ip, stamps := range rl.clients {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	close(rl.quit)
	<-rl.done
}
