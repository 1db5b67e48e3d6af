package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	apimw "github.com/cinematch/cinematch/internal/api/middleware"
	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/metadata"
	"github.com/cinematch/cinematch/internal/recommend"
	"github.com/cinematch/cinematch/internal/session"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxRecommendCount  = 50
)

// MovieView is everything the details page shows for one movie.
type MovieView struct {
	Movie           catalog.Movie              `json:"movie"`
	Details         *metadata.Details          `json:"details"`
	DetailsError    string                     `json:"detailsError,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	// SameTitle lists other catalog ids sharing this movie's title.
	SameTitle []string `json:"sameTitle,omitempty"`
}

// SurpriseView is a random pick with its details.
type SurpriseView struct {
	Pick         recommend.Recommendation `json:"pick"`
	Movie        catalog.Movie            `json:"movie"`
	Details      *metadata.Details        `json:"details"`
	DetailsError string                   `json:"detailsError,omitempty"`
}

// searchMovies matches titles case-insensitively.
// GET /api/v1/movies?query=&limit=
func (s *Server) searchMovies(c echo.Context) error {
	limit, err := intQueryParam(c, "limit", defaultSearchLimit)
	if err != nil || limit <= 0 || limit > maxSearchLimit {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 100")
	}

	results := s.catalog.SearchTitles(c.QueryParam("query"), limit)
	if results == nil {
		results = []catalog.Movie{}
	}
	return c.JSON(http.StatusOK, results)
}

// getMovie returns details and recommendations for one movie and records
// the selection in the viewer's session.
// GET /api/v1/movies/:id
func (s *Server) getMovie(c echo.Context) error {
	ctx := c.Request().Context()
	imdbID := c.Param("id")

	movie, ok := s.catalog.ByID(imdbID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, recommend.ErrMovieNotFound.Error())
	}

	view := MovieView{Movie: movie}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Details, view.DetailsError = s.fetchDetails(gctx, movie)
		return nil
	})
	g.Go(func() error {
		recs, err := s.engine.Recommend(gctx, imdbID, 0)
		view.Recommendations = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return s.mapLookupError(err)
	}

	for _, id := range s.catalog.TitlesByID(movie.Title) {
		if id != imdbID {
			view.SameTitle = append(view.SameTitle, id)
		}
	}

	s.recordView(c, func(state *session.State) error {
		return s.sessions.RecordSelect(ctx, state, imdbID)
	})

	return c.JSON(http.StatusOK, view)
}

// getRecommendations returns only the ranked list.
// GET /api/v1/movies/:id/recommendations?count=
func (s *Server) getRecommendations(c echo.Context) error {
	count, err := intQueryParam(c, "count", 0)
	if err != nil || count < 0 || count > maxRecommendCount {
		return echo.NewHTTPError(http.StatusBadRequest, "count must be between 1 and 50")
	}

	recs, err := s.engine.Recommend(c.Request().Context(), c.Param("id"), count)
	if err != nil {
		return s.mapLookupError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

// surprise picks a random movie and records it in the viewer's session.
// POST /api/v1/surprise
func (s *Server) surprise(c echo.Context) error {
	ctx := c.Request().Context()

	pick, err := s.engine.Surprise(ctx)
	if err != nil {
		return s.mapLookupError(err)
	}

	movie, _ := s.catalog.ByID(pick.ImdbID)
	view := SurpriseView{Pick: *pick, Movie: movie}
	view.Details, view.DetailsError = s.fetchDetails(ctx, movie)

	s.recordView(c, func(state *session.State) error {
		return s.sessions.RecordSurprise(ctx, state, pick.ImdbID)
	})

	return c.JSON(http.StatusOK, view)
}

// fetchDetails never fails the request; a provider error becomes a message.
func (s *Server) fetchDetails(ctx context.Context, movie catalog.Movie) (*metadata.Details, string) {
	details, err := s.metadata.FetchDetails(ctx, movie.ImdbID, movie.Director)
	if err != nil {
		return nil, "details unavailable"
	}
	return details, ""
}

// recordView applies fn to the request's session. Failures are logged only.
func (s *Server) recordView(c echo.Context, fn func(*session.State) error) {
	state := apimw.SessionFrom(c)
	if state == nil {
		return
	}
	if err := fn(state); err != nil {
		s.logger.Warn().Err(err).Str("sessionId", state.ID).Msg("Failed to save session")
	}
}

func (s *Server) mapLookupError(err error) error {
	if errors.Is(err, recommend.ErrMovieNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed").SetInternal(err)
}

func intQueryParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
