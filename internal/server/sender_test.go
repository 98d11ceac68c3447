package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/sockpulse/internal/conn"
)

func readFromPeer(t *testing.T, peer net.Conn) string {
	t.Helper()

	buf := make([]byte, 128)
	require.NoError(t, peer.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := peer.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func waitForSender(t *testing.T, s *sender) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		s.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender did not terminate")
	}
}

func TestSender_SequencedMessages(t *testing.T) {
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); c2.Close() })

	h := conn.Wrap(c1)
	fc := clockwork.NewFakeClock()
	snd := newSender(h, fc, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go snd.run(ctx)

	// First message goes out immediately, before the first interval elapses
	assert.Equal(t, "Server test message #0", readFromPeer(t, c2))

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Second)
	assert.Equal(t, "Server test message #1", readFromPeer(t, c2))

	fc.Advance(time.Second)
	assert.Equal(t, "Server test message #2", readFromPeer(t, c2))

	cancel()
	waitForSender(t, snd)
}

func TestSender_StopsOnSendFailure(t *testing.T) {
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close() })

	h := conn.Wrap(c1)
	require.NoError(t, c2.Close())

	snd := newSender(h, clockwork.NewFakeClock(), time.Second)
	go snd.run(context.Background())

	// First write fails against the closed peer; the sender must close the
	// handle and exit on its own.
	waitForSender(t, snd)
	assert.True(t, h.Closed())
}

func TestSender_StopsWhenHandleClosed(t *testing.T) {
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c2.Close() })

	h := conn.Wrap(c1)
	fc := clockwork.NewFakeClock()
	snd := newSender(h, fc, time.Second)

	ctx := context.Background()
	go snd.run(ctx)

	assert.Equal(t, "Server test message #0", readFromPeer(t, c2))

	// Worker-side close: next iteration sees the closed flag and exits
	require.NoError(t, h.Close())
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Second)
	waitForSender(t, snd)
}
