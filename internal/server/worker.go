package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/pscheid92/sockpulse/internal/conn"
	"github.com/pscheid92/sockpulse/internal/logging"
	"github.com/pscheid92/sockpulse/internal/metrics"
)

const payloadPreviewLen = 64

// worker is one long-lived pool member. It pulls connections off the queue
// one at a time and drives each receive loop to completion, so at most
// Workers connections are in active processing at any instant.
func (s *Server) worker(id int) {
	defer s.workerWg.Done()

	for {
		h, ok := s.queue.Dequeue()
		if !ok {
			return
		}
		metrics.QueueDepth.Set(float64(s.queue.Len()))
		s.serve(id, h)
	}
}

// serve owns h for its whole active lifetime: registry membership, the
// companion sender task, the receive loop and the final close.
func (s *Server) serve(workerID int, h *conn.Handle) {
	defer s.limits.Release()

	log := logging.WithWorker(workerID).With("conn_id", h.ID(), "remote_addr", h.RemoteAddr().String())

	if !s.registry.Add(h) {
		metrics.ConnectionsRejected.WithLabelValues(metrics.ReasonRegistryFull).Inc()
		log.Warn("Client registry full, closing connection")
		_, _ = h.Write([]byte("server busy\n"))
		_ = h.Close()
		return
	}
	defer s.registry.Remove(h)

	// Re-check after registering: a shutdown that started before the Add
	// closes registry members it saw, but not this one.
	if s.baseCtx.Err() != nil {
		_ = h.Close()
		return
	}

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	log.Info("Worker processing connection")

	sendCtx, stopSender := context.WithCancel(s.baseCtx)
	defer stopSender()

	snd := newSender(h, s.clock, s.cfg.SendInterval)
	s.senderWg.Add(1)
	go func() {
		defer s.senderWg.Done()
		snd.run(sendCtx)
	}()

	buf := make([]byte, s.cfg.ReadBufferSize)
	for {
		n, err := h.Read(buf)
		if n > 0 {
			metrics.BytesReceived.Add(float64(n))
			log.Debug("Received data", "bytes", n, "payload", preview(buf[:n]))
		}
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			log.Info("Connection closed by client")
		case h.Closed():
			log.Info("Connection closed locally")
		default:
			log.Warn("Read failed, dropping connection", "error", err)
		}
		break
	}

	// Close first: a sender blocked in a write must be unblocked before we
	// can join it.
	stopSender()
	_ = h.Close()
	snd.wait()

	log.Info("Connection finished")
}

// preview renders up to payloadPreviewLen bytes of a received chunk as a
// quoted string for debug logging.
func preview(p []byte) string {
	truncated := false
	if len(p) > payloadPreviewLen {
		p = p[:payloadPreviewLen]
		truncated = true
	}
	q := strconv.Quote(string(p))
	if truncated {
		q += "..."
	}
	return q
}

func hostOnly(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
