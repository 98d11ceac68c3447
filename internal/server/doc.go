// Package server implements the TCP connection pipeline.
//
// A single acceptor owns the listening socket and feeds accepted connections
// through a bounded FIFO queue to a fixed pool of workers. Each worker drives
// one connection's receive loop at a time and spawns a companion sender task
// on the same connection. Accept-path admission is guarded by per-IP rate and
// global connection limits.
package server
