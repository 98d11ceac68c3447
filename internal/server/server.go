package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/sockpulse/internal/config"
	"github.com/pscheid92/sockpulse/internal/conn"
	"github.com/pscheid92/sockpulse/internal/logging"
	"github.com/pscheid92/sockpulse/internal/metrics"
	"github.com/pscheid92/sockpulse/internal/queue"
	"github.com/pscheid92/sockpulse/internal/registry"
)

// Server wires the connection pipeline together: acceptor, bounded hand-off
// queue, fixed worker pool and the client registry.
type Server struct {
	cfg      *config.Config
	clock    clockwork.Clock
	queue    *queue.Queue
	registry *registry.Registry
	limits   *Limits

	listener net.Listener
	baseCtx  context.Context
	cancel   context.CancelFunc

	workerWg   sync.WaitGroup
	senderWg   sync.WaitGroup
	acceptorWg sync.WaitGroup
	ready      atomic.Bool
}

// New creates a server from cfg. Nothing is bound until Start.
func New(cfg *config.Config, clock clockwork.Clock) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		clock:    clock,
		queue:    queue.New(cfg.QueueCapacity),
		registry: registry.New(cfg.MaxClients),
		limits:   NewLimits(cfg.MaxConnections, cfg.ConnRatePerIP, cfg.ConnBurstPerIP),
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Start binds the listening socket, launches the worker pool and the accept
// loop, and returns. A bind or listen failure is fatal for the caller; the
// server never retries it.
func (s *Server) Start() error {
	ln, err := listen(s.baseCtx, net.JoinHostPort("", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", s.cfg.Port, err)
	}
	s.listener = ln

	for i := range s.cfg.Workers {
		s.workerWg.Add(1)
		go s.worker(i)
	}

	s.acceptorWg.Add(1)
	go s.acceptLoop()

	s.ready.Store(true)
	slog.Info("Listener started", "addr", ln.Addr().String(), "workers", s.cfg.Workers)
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Ready reports whether the server is accepting connections.
func (s *Server) Ready() bool {
	return s.ready.Load()
}

// Broadcast fans payload out to every registered client, best effort.
func (s *Server) Broadcast(payload []byte) (delivered, failed int) {
	return s.registry.Broadcast(payload)
}

// Stats describes the current pipeline state.
type Stats struct {
	QueueDepth       int   `json:"queue_depth"`
	QueueCapacity    int   `json:"queue_capacity"`
	ActiveClients    int   `json:"active_clients"`
	RegistryCapacity int   `json:"registry_capacity"`
	OpenConnections  int64 `json:"open_connections"`
	Workers          int   `json:"workers"`
}

func (s *Server) Stats() Stats {
	return Stats{
		QueueDepth:       s.queue.Len(),
		QueueCapacity:    s.queue.Cap(),
		ActiveClients:    s.registry.Len(),
		RegistryCapacity: s.registry.Cap(),
		OpenConnections:  s.limits.Open(),
		Workers:          s.cfg.Workers,
	}
}

// Shutdown stops accepting, closes queued and active connections, and joins
// all workers and sender tasks. It returns ctx.Err if the pipeline does not
// drain before ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.cancel()

	if s.listener != nil {
		_ = s.listener.Close()
	}

	// Connections still waiting for a worker never get one now
	for _, h := range s.queue.Close() {
		s.limits.Release()
		_ = h.Close()
	}
	metrics.QueueDepth.Set(0)

	// Closing active handles unblocks workers stuck in Read
	for _, h := range s.registry.Snapshot() {
		_ = h.Close()
	}

	done := make(chan struct{})
	go func() {
		s.acceptorWg.Wait()
		s.workerWg.Wait()
		s.senderWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Server shut down cleanly")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acceptLoop blocks on Accept until the listener closes. Transient accept
// failures are logged and retried with a capped backoff; they never take the
// service down.
func (s *Server) acceptLoop() {
	defer s.acceptorWg.Done()

	var backoff time.Duration
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if s.baseCtx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			metrics.AcceptErrors.Inc()
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			logging.WithError(err).Warn("Accept failed", "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-s.baseCtx.Done():
				return
			}
			continue
		}
		backoff = 0
		s.handleAccepted(nc)
	}
}

func (s *Server) handleAccepted(nc net.Conn) {
	ip := hostOnly(nc.RemoteAddr())

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.ConnectionsRejected.WithLabelValues(reason).Inc()
		slog.Warn("Connection rejected", "remote_addr", nc.RemoteAddr().String(), "reason", reason)
		rejectBusy(nc)
		return
	}

	h := conn.Wrap(nc)
	if !s.queue.TryEnqueue(h) {
		s.limits.Release()
		metrics.ConnectionsRejected.WithLabelValues(metrics.ReasonQueueFull).Inc()
		slog.Warn("Connection queue full, rejecting", "conn_id", h.ID(), "remote_addr", nc.RemoteAddr().String())
		rejectBusy(nc)
		return
	}

	metrics.ConnectionsAccepted.Inc()
	metrics.QueueDepth.Set(float64(s.queue.Len()))
	slog.Info("Accepted connection", "conn_id", h.ID(), "remote_addr", nc.RemoteAddr().String())
}

// rejectBusy tells the peer the server has no room and closes the raw
// connection.
func rejectBusy(nc net.Conn) {
	_ = nc.SetWriteDeadline(time.Now().Add(time.Second))
	_, _ = nc.Write([]byte("server busy\n"))
	_ = nc.Close()
}
