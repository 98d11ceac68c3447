package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	val, err := Do(context.Background(), Policy{MaxAttempts: 5, InitialBackoff: time.Millisecond}, Always, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("bad config")
	classify := func(err error) Action {
		if errors.Is(err, permanent) {
			return Stop
		}
		return Retry
	}

	attempts := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 5, InitialBackoff: time.Millisecond}, classify, func() (int, error) {
		attempts++
		return 0, permanent
	})

	require.Error(t, err)
	var pe *PermanentError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond}, Always, func() (int, error) {
		attempts++
		return 0, errors.New("still failing")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, Policy{MaxAttempts: 10, InitialBackoff: time.Hour}, Always, func() (int, error) {
			attempts++
			return 0, errors.New("transient")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestDo_OnRetryCallback(t *testing.T) {
	var backoffs []time.Duration
	p := Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		OnRetry: func(_ int, _ error, backoff time.Duration) {
			backoffs = append(backoffs, backoff)
		},
	}

	_, err := Do(context.Background(), p, Always, func() (int, error) {
		return 0, errors.New("transient")
	})
	require.Error(t, err)

	// Backoff doubles between attempts; no callback after the final attempt
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, backoffs)
}

func TestDoVoid(t *testing.T) {
	attempts := 0
	err := DoVoid(context.Background(), Policy{MaxAttempts: 2, InitialBackoff: time.Millisecond}, Always, func() error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
