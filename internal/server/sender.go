package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/sockpulse/internal/conn"
	"github.com/pscheid92/sockpulse/internal/logging"
	"github.com/pscheid92/sockpulse/internal/metrics"
)

// sender is the companion task of one active connection. It emits
// sequence-numbered test messages at a fixed interval until the connection
// dies, a send fails, or the context is cancelled.
type sender struct {
	handle   *conn.Handle
	clock    clockwork.Clock
	interval time.Duration
	finished chan struct{}
}

func newSender(h *conn.Handle, clock clockwork.Clock, interval time.Duration) *sender {
	return &sender{
		handle:   h,
		clock:    clock,
		interval: interval,
		finished: make(chan struct{}),
	}
}

func (s *sender) run(ctx context.Context) {
	defer close(s.finished)

	log := logging.WithConn(s.handle.ID().String())
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for seq := 0; ; seq++ {
		if ctx.Err() != nil || s.handle.Closed() {
			return
		}

		msg := fmt.Sprintf("Server test message #%d", seq)
		if _, err := s.handle.Write([]byte(msg)); err != nil {
			metrics.SendErrors.Inc()
			log.Warn("Send failed, terminating sender", "seq", seq, "error", err)
			_ = s.handle.Close()
			return
		}
		metrics.MessagesSent.Inc()
		log.Debug("Sent message", "seq", seq)

		select {
		case <-ticker.Chan():
		case <-ctx.Done():
			return
		}
	}
}

// wait blocks until the sender task has exited.
func (s *sender) wait() {
	<-s.finished
}
