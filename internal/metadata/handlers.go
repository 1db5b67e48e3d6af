package metadata

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for metadata operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the metadata routes. guard wraps the routes that
// change state.
func (h *Handlers) RegisterRoutes(g *echo.Group, guard ...echo.MiddlewareFunc) {
	g.GET("/trending", h.GetTrending)

	// Cache management
	g.DELETE("/cache", h.ClearCache, guard...)
	g.GET("/cache", h.GetCacheStats)
}

// TrendingResponse is the cached weekly trending list.
type TrendingResponse struct {
	Movies    []TrendingMovie `json:"movies"`
	FetchedAt *time.Time      `json:"fetchedAt,omitempty"`
}

// GetTrending returns the weekly trending list.
// A provider failure renders an empty list rather than an error.
// GET /api/v1/trending
func (h *Handlers) GetTrending(c echo.Context) error {
	movies, fetchedAt, err := h.service.Trending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, TrendingResponse{Movies: []TrendingMovie{}})
	}

	return c.JSON(http.StatusOK, TrendingResponse{
		Movies:    movies,
		FetchedAt: &fetchedAt,
	})
}

// GetCacheStats returns the id cache counters.
// GET /api/v1/cache
func (h *Handlers) GetCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.CacheStats())
}

// ClearCache clears the metadata cache.
// DELETE /api/v1/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}
