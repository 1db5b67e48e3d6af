package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/api/ratelimit"
	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/metadata"
	"github.com/cinematch/cinematch/internal/recommend"
	"github.com/cinematch/cinematch/internal/scheduler"
	"github.com/cinematch/cinematch/internal/session"
)

// Version is reported by /api/v1/status. Overridden at build time.
var Version = "0.1.0-dev"

// Deps are the services the API serves.
type Deps struct {
	Catalog   *catalog.Catalog
	Metadata  *metadata.Service
	Engine    *recommend.Engine
	Sessions  *session.Service
	Scheduler *scheduler.Scheduler
}

// Server handles HTTP requests for the CineMatch API.
type Server struct {
	echo      *echo.Echo
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	catalog   *catalog.Catalog
	metadata  *metadata.Service
	engine    *recommend.Engine
	sessions  *session.Service
	scheduler *scheduler.Scheduler

	limiter *ratelimit.IPLimiter
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, deps Deps, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		logger:    logger.With().Str("component", "api").Logger(),
		cfg:       cfg,
		startTime: time.Now(),
		catalog:   deps.Catalog,
		metadata:  deps.Metadata,
		engine:    deps.Engine,
		sessions:  deps.Sessions,
		scheduler: deps.Scheduler,
		limiter:   ratelimit.NewIPLimiter(ratelimit.DefaultRequestsPerWindow, ratelimit.DefaultWindow),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted in tests and other muxes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// CleanupRateLimits drops expired rate limit buckets.
func (s *Server) CleanupRateLimits() {
	s.limiter.Cleanup()
}
