package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/pscheid92/sockpulse/internal/metrics"
)

// globalLimiter caps total concurrent connections per instance.
// Uses atomic operations for lock-free counting.
type globalLimiter struct {
	current atomic.Int64
	max     int64
}

func (l *globalLimiter) acquire() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (l *globalLimiter) release() {
	l.current.Add(-1)
}

// ipRateLimiter caps the rate of new connections per IP using a token bucket
// per source address. Buckets idle for 10 minutes are dropped during the
// periodic cleanup.
type ipRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucketEntry
	limit     rate.Limit
	burst     int
	cleanupAt time.Time
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		buckets:   make(map[string]*bucketEntry),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		cleanupAt: time.Now().Add(5 * time.Minute),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.cleanupAt) {
		l.cleanup()
		l.cleanupAt = time.Now().Add(5 * time.Minute)
	}

	entry, exists := l.buckets[ip]
	if !exists {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = entry
	}

	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// cleanup must be called with mu held.
func (l *ipRateLimiter) cleanup() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, entry := range l.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(l.buckets, ip)
		}
	}
}

// Limits guards the accept path: a per-IP connection rate and a global cap on
// concurrently open connections.
type Limits struct {
	global *globalLimiter
	rate   *ipRateLimiter
}

// NewLimits creates a combined limiter.
func NewLimits(globalMax int64, perSecondPerIP float64, burstPerIP int) *Limits {
	return &Limits{
		global: &globalLimiter{max: globalMax},
		rate:   newIPRateLimiter(perSecondPerIP, burstPerIP),
	}
}

// Acquire attempts to claim a connection slot for the given IP.
// On rejection the returned reason matches the metrics rejection labels.
func (l *Limits) Acquire(ip string) (bool, string) {
	if !l.rate.allow(ip) {
		return false, metrics.ReasonRateLimit
	}
	if !l.global.acquire() {
		return false, metrics.ReasonGlobalLimit
	}
	return true, ""
}

// Release returns a previously acquired slot to the global cap. The per-IP
// rate limiter is time-based and needs no release.
func (l *Limits) Release() {
	l.global.release()
}

// Open returns the number of currently open connections.
func (l *Limits) Open() int64 {
	return l.global.current.Load()
}

// Max returns the global connection cap.
func (l *Limits) Max() int64 {
	return l.global.max
}
