package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/cinematch/internal/metadata"
)

// StatusResponse describes the running instance.
type StatusResponse struct {
	Version        string              `json:"version"`
	StartTime      string              `json:"startTime"`
	Uptime         string              `json:"uptime"`
	MovieCount     int                 `json:"movieCount"`
	DeveloperMode  bool                `json:"developerMode"`
	TMDBConfigured bool                `json:"tmdbConfigured"`
	Cache          metadata.CacheStats `json:"cache"`
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Version:        Version,
		StartTime:      s.startTime.Format(time.RFC3339),
		Uptime:         time.Since(s.startTime).Round(time.Second).String(),
		MovieCount:     s.catalog.Len(),
		DeveloperMode:  s.cfg.DeveloperMode,
		TMDBConfigured: s.metadata.IsConfigured(),
		Cache:          s.metadata.CacheStats(),
	})
}
