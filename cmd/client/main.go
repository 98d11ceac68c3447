// Command client opens several concurrent TCP connections to a sockpulse
// server and logs whatever each connection receives until the server closes
// it or the process is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/pscheid92/sockpulse/internal/retry"
)

func main() {
	var (
		addr    = flag.String("addr", "127.0.0.1:7070", "server address")
		conns   = flag.Int("conns", 4, "number of concurrent connections")
		verbose = flag.Bool("verbose", false, "verbose logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for i := range *conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receive(ctx, *addr, i)
		}()
	}
	wg.Wait()
}

func receive(ctx context.Context, addr string, id int) {
	log := slog.With("client", id)

	policy := retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 200 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Warn("Connect failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	c, err := retry.Do(ctx, policy, retry.Always, func() (net.Conn, error) {
		return net.Dial("tcp", addr)
	})
	if err != nil {
		log.Error("Could not connect", "addr", addr, "error", err)
		return
	}
	defer c.Close()

	// Unblock the read loop when the process is interrupted
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	log.Info("Connected", "addr", addr)

	buf := make([]byte, 1024)
	for {
		n, err := c.Read(buf)
		if n > 0 {
			log.Info("Received", "bytes", n, "payload", strconv.Quote(string(buf[:n])))
		}
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info("Connection closed by server")
			case ctx.Err() != nil:
				log.Info("Interrupted")
			default:
				log.Error("Read failed", "error", err)
			}
			return
		}
	}
}
