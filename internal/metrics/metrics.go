package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Acceptor Metrics
var (
	// ConnectionsAccepted tracks connections accepted and handed to the queue
	ConnectionsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "connections_accepted_total",
			Help: "Total connections accepted and enqueued for processing",
		},
	)

	// ConnectionsRejected tracks connections rejected before processing, by reason
	ConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connections_rejected_total",
			Help: "Total connections rejected before processing, by reason",
		},
		[]string{"reason"},
	)

	// AcceptErrors tracks transient accept failures
	AcceptErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accept_errors_total",
			Help: "Total transient accept failures",
		},
	)
)

// Pipeline Metrics
var (
	// QueueDepth tracks current number of connections waiting in the hand-off queue
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connection_queue_depth",
			Help: "Current number of connections waiting for a worker",
		},
	)

	// ActiveConnections tracks connections currently held by a worker
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Connections currently in active receive processing",
		},
	)

	// RegistryClients tracks current client registry membership
	RegistryClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_clients",
			Help: "Current number of clients in the registry",
		},
	)

	// BytesReceived tracks application bytes read from clients
	BytesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytes_received_total",
			Help: "Total application bytes received from clients",
		},
	)
)

// Sender Metrics
var (
	// MessagesSent tracks periodic messages written by sender tasks
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total periodic messages sent to clients",
		},
	)

	// SendErrors tracks sender write failures (each terminates its sender task)
	SendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "send_errors_total",
			Help: "Total sender write failures",
		},
	)
)

// Broadcast Metrics
var (
	// BroadcastsTotal tracks registry-wide broadcasts
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total registry-wide broadcasts",
		},
	)

	// BroadcastSendFailures tracks per-recipient broadcast delivery failures
	BroadcastSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_send_failures_total",
			Help: "Broadcast deliveries that failed for a single recipient",
		},
	)
)

// Rejection reasons for ConnectionsRejected.
const (
	ReasonQueueFull    = "queue_full"
	ReasonGlobalLimit  = "global_limit"
	ReasonRateLimit    = "rate_limit"
	ReasonRegistryFull = "registry_full"
)
