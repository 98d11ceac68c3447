// Package ops exposes the operational HTTP surface of the server: health
// probes, Prometheus metrics, pipeline stats and an admin broadcast endpoint.
package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/sockpulse/internal/server"
)

// Pipeline is the part of the connection pipeline the ops surface needs.
type Pipeline interface {
	Ready() bool
	Stats() server.Stats
	Broadcast(payload []byte) (delivered, failed int)
}

type Server struct {
	echo      *echo.Echo
	pipeline  Pipeline
	port      string
	startTime time.Time
}

func NewServer(port string, pipeline Pipeline) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		pipeline:  pipeline,
		port:      port,
		startTime: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/stats", s.handleStats)
	s.echo.POST("/broadcast", s.handleBroadcast)
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
