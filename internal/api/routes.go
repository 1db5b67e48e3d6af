package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinematch/cinematch/internal/api/handlers"
	apimw "github.com/cinematch/cinematch/internal/api/middleware"
	"github.com/cinematch/cinematch/internal/metadata"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// Request body size limit
	s.echo.Use(middleware.BodyLimit("64K"))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(apimw.Metrics())

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	viewer := api.Group("")
	viewer.Use(apimw.Session(s.sessions, apimw.SessionConfig{
		CookieName: s.cfg.Session.CookieName,
		MaxAge:     s.cfg.Session.MaxAge,
	}))

	s.setupMovieRoutes(viewer)
	s.setupSessionRoutes(viewer)

	metadataHandlers := metadata.NewHandlers(s.metadata)
	metadataHandlers.RegisterRoutes(api, s.limiter.Middleware())

	s.setupSchedulerRoutes(api)
}

func (s *Server) setupMovieRoutes(viewer *echo.Group) {
	viewer.GET("/movies", s.searchMovies)
	viewer.GET("/movies/:id", s.getMovie)
	viewer.GET("/movies/:id/recommendations", s.getRecommendations)
	viewer.POST("/surprise", s.surprise, s.limiter.Middleware())
}

func (s *Server) setupSessionRoutes(viewer *echo.Group) {
	viewer.GET("/session", s.getSession)
	viewer.GET("/session/history", s.getSessionHistory)
}

func (s *Server) setupSchedulerRoutes(api *echo.Group) {
	if s.scheduler == nil {
		return
	}
	schedulerHandler := handlers.NewSchedulerHandler(s.scheduler)
	schedulerHandler.RegisterRoutes(api.Group("/scheduler/tasks"), s.limiter.Middleware())
}
