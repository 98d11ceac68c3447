package server

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pscheid92/sockpulse/internal/metrics"
)

func TestGlobalLimiter_AcquireRelease(t *testing.T) {
	l := &globalLimiter{max: 3}

	assert.True(t, l.acquire())
	assert.True(t, l.acquire())
	assert.True(t, l.acquire())
	assert.False(t, l.acquire())
	assert.Equal(t, int64(3), l.current.Load())

	l.release()
	assert.True(t, l.acquire())
	assert.Equal(t, int64(3), l.current.Load())
}

func TestGlobalLimiter_Concurrent(t *testing.T) {
	l := &globalLimiter{max: 100}
	var success, fail atomic.Int64

	start := make(chan struct{})
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if l.acquire() {
				success.Add(1)
			} else {
				fail.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(100), success.Load())
	assert.Equal(t, int64(100), fail.Load())
	assert.Equal(t, int64(100), l.current.Load())
}

func TestIPRateLimiter_BurstThenReject(t *testing.T) {
	l := newIPRateLimiter(1, 3)

	for i := range 3 {
		assert.True(t, l.allow("10.0.0.1"), "burst attempt %d", i)
	}
	assert.False(t, l.allow("10.0.0.1"))

	// Independent bucket per IP
	assert.True(t, l.allow("10.0.0.2"))
}

func TestLimits_AcquireReasons(t *testing.T) {
	l := NewLimits(1, 1000, 1000)

	ok, reason := l.Acquire("10.0.0.1")
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = l.Acquire("10.0.0.2")
	assert.False(t, ok)
	assert.Equal(t, metrics.ReasonGlobalLimit, reason)

	l.Release()
	ok, _ = l.Acquire("10.0.0.2")
	assert.True(t, ok)
}

func TestLimits_RateRejection(t *testing.T) {
	l := NewLimits(100, 1, 1)

	ok, _ := l.Acquire("10.0.0.1")
	assert.True(t, ok)

	ok, reason := l.Acquire("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, metrics.ReasonRateLimit, reason)

	// Rate rejection must not leak a global slot
	assert.Equal(t, int64(1), l.Open())
}
