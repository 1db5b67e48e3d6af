package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	apimw "github.com/cinematch/cinematch/internal/api/middleware"
	"github.com/cinematch/cinematch/internal/recommend"
)

// HistoryEntry is one recently viewed movie.
type HistoryEntry struct {
	ImdbID    string `json:"imdbId"`
	Title     string `json:"title"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// getSession returns the viewer's current view state.
// GET /api/v1/session
func (s *Server) getSession(c echo.Context) error {
	state := apimw.SessionFrom(c)
	if state == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "no session")
	}
	return c.JSON(http.StatusOK, state)
}

// getSessionHistory returns recently viewed movies, newest first.
// GET /api/v1/session/history
func (s *Server) getSessionHistory(c echo.Context) error {
	state := apimw.SessionFrom(c)
	if state == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "no session")
	}

	recent := state.Recent()
	entries := make([]HistoryEntry, len(recent))

	g, gctx := errgroup.WithContext(c.Request().Context())
	workers := s.cfg.Recommend.Workers
	if workers <= 0 {
		workers = recommend.DefaultWorkers
	}
	g.SetLimit(workers)
	for i, id := range recent {
		entries[i].ImdbID = id
		if m, ok := s.catalog.ByID(id); ok {
			entries[i].Title = m.Title
		}
		entry := &entries[i]
		g.Go(func() error {
			if url, err := s.metadata.FetchPoster(gctx, entry.ImdbID); err == nil {
				entry.PosterURL = url
			}
			return nil
		})
	}
	_ = g.Wait()

	return c.JSON(http.StatusOK, entries)
}
