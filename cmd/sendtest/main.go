// Command sendtest connects to a sockpulse server and sends a numbered test
// message at a fixed interval until a send fails or the process is
// interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pscheid92/sockpulse/internal/retry"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:7070", "server address")
		interval = flag.Duration("interval", time.Second, "delay between messages")
		count    = flag.Int("count", 0, "number of messages to send (0 = until failure)")
	)
	flag.Parse()

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 200 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Connect failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	c, err := retry.Do(ctx, policy, retry.Always, func() (net.Conn, error) {
		return net.Dial("tcp", *addr)
	})
	if err != nil {
		slog.Error("Could not connect", "addr", *addr, "error", err)
		os.Exit(1)
	}
	defer c.Close()

	slog.Info("Connected", "addr", *addr)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for n := 0; *count == 0 || n < *count; n++ {
		msg := fmt.Sprintf("Test message #%d from sender", n)
		if _, err := c.Write([]byte(msg)); err != nil {
			slog.Error("Send failed, stopping", "seq", n, "error", err)
			os.Exit(1)
		}
		slog.Info("Sent", "msg", msg)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("Interrupted")
			return
		}
	}
}
