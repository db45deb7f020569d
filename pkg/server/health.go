package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthInfo reports process liveness. It says nothing about the upstreams,
// which are allowed to be down.
type HealthInfo struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (srv *Server) health(ctx echo.Context) error {
	uptime := time.Since(srv.startedAt).Truncate(time.Second)
	return ctx.JSON(http.StatusOK, HealthInfo{
		Status:        "ok",
		Version:       srv.version,
		Uptime:        uptime.String(),
		UptimeSeconds: int64(uptime.Seconds()),
	})
}
