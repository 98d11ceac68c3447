// Package registry tracks the set of currently active client connections
// and offers a best-effort broadcast across them.
package registry

import (
	"log/slog"
	"sync"

	"github.com/pscheid92/sockpulse/internal/conn"
	"github.com/pscheid92/sockpulse/internal/metrics"
)

// Registry is a capacity-bounded set of connection handles. All operations
// are internally synchronized; the lock is never held across network I/O.
type Registry struct {
	mu       sync.Mutex
	capacity int
	handles  []*conn.Handle
}

// New creates a registry that accepts at most capacity members.
func New(capacity int) *Registry {
	if capacity < 1 {
		panic("registry: capacity must be positive")
	}
	return &Registry{
		capacity: capacity,
		handles:  make([]*conn.Handle, 0, capacity),
	}
}

// Add inserts h if the registry is below capacity. It never blocks; at
// capacity the insert is rejected and logged.
func (r *Registry) Add(h *conn.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.handles) >= r.capacity {
		slog.Warn("Registry full, client rejected", "conn_id", h.ID(), "capacity", r.capacity)
		return false
	}

	r.handles = append(r.handles, h)
	metrics.RegistryClients.Set(float64(len(r.handles)))
	return true
}

// Remove drops h from the registry. Absent handles are a no-op. The registry
// is unordered, so removal swaps the last entry into the vacated slot.
func (r *Registry) Remove(h *conn.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, member := range r.handles {
		if member == h {
			last := len(r.handles) - 1
			r.handles[i] = r.handles[last]
			r.handles[last] = nil
			r.handles = r.handles[:last]
			metrics.RegistryClients.Set(float64(len(r.handles)))
			return
		}
	}
}

// Len returns the current member count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Cap returns the registry capacity.
func (r *Registry) Cap() int {
	return r.capacity
}

// Snapshot returns a copy of the current membership. Callers use it to act
// on members (broadcast, shutdown) without holding the registry lock.
func (r *Registry) Snapshot() []*conn.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*conn.Handle(nil), r.handles...)
}

// Broadcast writes payload to every current member. Delivery is best effort:
// a failed recipient is logged and skipped, the rest still receive the
// payload. Returns the number of successful deliveries and the number of
// failures.
func (r *Registry) Broadcast(payload []byte) (delivered, failed int) {
	members := r.Snapshot()
	metrics.BroadcastsTotal.Inc()

	for _, h := range members {
		if _, err := h.Write(payload); err != nil {
			slog.Warn("Broadcast delivery failed", "conn_id", h.ID(), "error", err)
			metrics.BroadcastSendFailures.Inc()
			failed++
			continue
		}
		delivered++
	}
	return delivered, failed
}
