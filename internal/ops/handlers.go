package ops

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/sockpulse/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
		"build":  version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if !s.pipeline.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.pipeline.Stats())
}

type broadcastRequest struct {
	Message string `json:"message"`
}

// handleBroadcast fans a message out to every connected client through the
// registry. Delivery is best effort; the response reports how it went.
func (s *Server) handleBroadcast(c echo.Context) error {
	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	delivered, failed := s.pipeline.Broadcast([]byte(req.Message))
	return c.JSON(http.StatusOK, map[string]int{
		"delivered": delivered,
		"failed":    failed,
	})
}
