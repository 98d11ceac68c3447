package conn

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle wraps a live network connection with a logical identifier.
//
// A Handle is jointly referenced by the worker that drives its receive loop
// and by the sender task sharing the same connection. Close is idempotent:
// the underlying connection is closed exactly once no matter how many owners
// call it, and the closed flag lets either side bail out before the next
// blocking call.
type Handle struct {
	id     uuid.UUID
	nc     net.Conn
	closed atomic.Bool
	once   sync.Once
}

// Wrap creates a Handle around an established connection and assigns it a
// fresh logical id.
func Wrap(nc net.Conn) *Handle {
	return &Handle{
		id: uuid.New(),
		nc: nc,
	}
}

// ID returns the logical connection id.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// RemoteAddr returns the peer address.
func (h *Handle) RemoteAddr() net.Addr {
	return h.nc.RemoteAddr()
}

// Read reads up to len(p) bytes from the connection.
func (h *Handle) Read(p []byte) (int, error) {
	return h.nc.Read(p)
}

// Write writes p to the connection. It fails fast with net.ErrClosed once
// the handle has been closed, without touching the underlying connection.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed.Load() {
		return 0, net.ErrClosed
	}
	return h.nc.Write(p)
}

// Close closes the underlying connection exactly once. Subsequent calls
// return nil.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		h.closed.Store(true)
		err = h.nc.Close()
	})
	return err
}

// Closed reports whether Close has been called on this handle.
func (h *Handle) Closed() bool {
	return h.closed.Load()
}
