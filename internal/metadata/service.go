package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/httpclient"
	"github.com/cinematch/cinematch/internal/metadata/tmdb"
	"github.com/cinematch/cinematch/internal/metrics"
)

// idCacheName labels the id resolution cache in metrics.
const idCacheName = "tmdb_ids"

// notFoundID marks a definitive "TMDB has no movie for this IMDb id" answer in the id cache.
const notFoundID = 0

// defaultFlightTimeout bounds a shared id lookup once it is detached from
// the caller that started it.
const defaultFlightTimeout = 2 * time.Minute

// Service is the gateway to the external movie metadata provider.
// Every lookup takes an IMDb id; failures are returned as errors and logged
// here so callers only need to render a placeholder.
type Service struct {
	tmdb   TMDBClient
	ids    *Cache[string, int]
	group  singleflight.Group
	logger zerolog.Logger

	flightTimeout time.Duration

	trendingMu        sync.RWMutex
	trending          []TrendingMovie
	trendingFetchedAt time.Time
}

// NewService creates a metadata service backed by the real TMDB client.
func NewService(cfg config.TMDBConfig, logger zerolog.Logger) *Service {
	return NewServiceWithClient(tmdb.NewClient(cfg, logger), cfg.IDCacheSize, logger)
}

// NewServiceWithClient creates a metadata service with a custom client (for testing/mocking).
func NewServiceWithClient(client TMDBClient, cacheSize int, logger zerolog.Logger) *Service {
	ids := NewCache[string, int](cacheSize)
	ids.OnEvict(func(string, int) {
		metrics.CacheEvictions.WithLabelValues(idCacheName).Inc()
	})

	return &Service{
		tmdb:          client,
		ids:           ids,
		logger:        logger.With().Str("component", "metadata").Logger(),
		flightTimeout: defaultFlightTimeout,
	}
}

// IsConfigured reports whether the provider has credentials.
func (s *Service) IsConfigured() bool {
	return s.tmdb.IsConfigured()
}

// Test checks connectivity to the provider.
func (s *Service) Test(ctx context.Context) error {
	return s.tmdb.Test(ctx)
}

// ResolveTMDBID maps an IMDb id to the provider's movie id.
// Positive and definitive negative answers are cached; transient failures are not.
func (s *Service) ResolveTMDBID(ctx context.Context, imdbID string) (int, error) {
	if imdbID == "" {
		return 0, httpclient.NotFound("find", "empty IMDb id")
	}

	if id, ok := s.ids.Get(imdbID); ok {
		metrics.CacheHits.WithLabelValues(idCacheName).Inc()
		if id == notFoundID {
			return 0, httpclient.NotFound("find", "no movie results for %s", imdbID)
		}
		return id, nil
	}
	metrics.CacheMisses.WithLabelValues(idCacheName).Inc()

	// The flight outlives any one caller: each waiter can give up on its
	// own context without failing the others.
	ch := s.group.DoChan(imdbID, func() (any, error) {
		// A concurrent flight may have filled the entry while we waited.
		if id, ok := s.ids.Peek(imdbID); ok {
			return id, nil
		}

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flightTimeout)
		defer cancel()

		id, err := s.tmdb.FindByIMDbID(fctx, imdbID)
		switch {
		case err == nil:
			s.ids.Set(imdbID, id)
		case errors.Is(err, httpclient.ErrNotFound):
			s.ids.Set(imdbID, notFoundID)
		}
		return id, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.logFailure(res.Err, "tmdb_id", imdbID)
		return 0, res.Err
	}

	id := res.Val.(int)
	if id == notFoundID {
		return 0, httpclient.NotFound("find", "no movie results for %s", imdbID)
	}
	return id, nil
}

// FetchPoster returns the w500 poster URL for a movie.
func (s *Service) FetchPoster(ctx context.Context, imdbID string) (string, error) {
	id, err := s.ResolveTMDBID(ctx, imdbID)
	if err != nil {
		return "", err
	}

	movie, err := s.tmdb.GetMovie(ctx, id)
	if err != nil {
		s.logFailure(err, "poster", imdbID)
		return "", err
	}

	if movie.PosterPath == nil || *movie.PosterPath == "" {
		err := httpclient.NotFound("movie", "no poster for %s", imdbID)
		s.logFailure(err, "poster", imdbID)
		return "", err
	}
	return s.tmdb.GetImageURL(*movie.PosterPath, PosterSize), nil
}

// FetchTrailer returns the YouTube watch URL of the movie's first trailer.
func (s *Service) FetchTrailer(ctx context.Context, imdbID string) (string, error) {
	id, err := s.ResolveTMDBID(ctx, imdbID)
	if err != nil {
		return "", err
	}

	videos, err := s.tmdb.GetMovieVideos(ctx, id)
	if err != nil {
		s.logFailure(err, "trailer", imdbID)
		return "", err
	}

	trailer, ok := tmdb.TrailerURL(videos)
	if !ok {
		err := httpclient.NotFound("videos", "no trailer for %s", imdbID)
		s.logFailure(err, "trailer", imdbID)
		return "", err
	}
	return trailer, nil
}

// FetchDetails assembles the details bundle for a movie in a single provider call.
// director comes from the local movie table.
func (s *Service) FetchDetails(ctx context.Context, imdbID, director string) (*Details, error) {
	id, err := s.ResolveTMDBID(ctx, imdbID)
	if err != nil {
		return nil, err
	}

	movie, err := s.tmdb.GetMovieWithCredits(ctx, id)
	if err != nil {
		s.logFailure(err, "details", imdbID)
		return nil, err
	}

	details := s.buildDetails(movie, director)

	s.logger.Debug().
		Str("imdbId", imdbID).
		Int("tmdbId", id).
		Int("cast", len(details.Cast)).
		Bool("trailer", details.TrailerURL != "").
		Msg("Assembled movie details")

	return details, nil
}

func (s *Service) buildDetails(movie *tmdb.MovieDetails, director string) *Details {
	d := &Details{
		TMDBID:      movie.ID,
		Title:       movie.Title,
		Rating:      movie.VoteAverage,
		VoteCount:   movie.VoteCount,
		ReleaseDate: orNotAvailable(movie.ReleaseDate),
		Runtime:     movie.Runtime,
		Tagline:     movie.Tagline,
		Overview:    orNotAvailable(movie.Overview),
		Director:    orNotAvailable(strings.TrimSpace(director)),
		Cast:        []CastMember{},
		Budget:      FormatCurrency(movie.Budget),
		Revenue:     FormatCurrency(movie.Revenue),
	}

	genres := make([]string, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}
	d.Genres = joinOrNotAvailable(genres)

	languages := make([]string, 0, len(movie.SpokenLanguages))
	for _, l := range movie.SpokenLanguages {
		if l.EnglishName != "" {
			languages = append(languages, l.EnglishName)
		}
	}
	d.AvailableIn = joinOrNotAvailable(languages)

	if movie.Credits != nil {
		for _, c := range movie.Credits.Cast {
			if len(d.Cast) == MaxCast {
				break
			}
			member := CastMember{Name: c.Name, Character: c.Character}
			if c.ProfilePath != nil && *c.ProfilePath != "" {
				member.ProfileURL = s.tmdb.GetImageURL(*c.ProfilePath, ProfileSize)
			}
			d.Cast = append(d.Cast, member)
		}
	}

	if movie.PosterPath != nil && *movie.PosterPath != "" {
		d.PosterURL = s.tmdb.GetImageURL(*movie.PosterPath, PosterSize)
	}

	if movie.Videos != nil {
		if trailer, ok := tmdb.TrailerURL(movie.Videos.Results); ok {
			d.TrailerURL = trailer
		}
	}

	return d
}

// FetchTrending fetches the first TrendingLimit entries of the weekly trending list.
func (s *Service) FetchTrending(ctx context.Context) ([]TrendingMovie, error) {
	results, err := s.tmdb.GetTrendingMovies(ctx)
	if err != nil {
		s.logFailure(err, "trending", "")
		return nil, err
	}

	if len(results) > TrendingLimit {
		results = results[:TrendingLimit]
	}

	movies := make([]TrendingMovie, 0, len(results))
	for _, r := range results {
		m := TrendingMovie{TMDBID: r.ID, Title: r.Title}
		if m.Title == "" {
			m.Title = r.OriginalTitle
		}
		if r.PosterPath != nil && *r.PosterPath != "" {
			m.PosterURL = s.tmdb.GetImageURL(*r.PosterPath, PosterSize)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// RefreshTrending fetches the trending list and replaces the cached copy.
// The previous list is kept when the fetch fails.
func (s *Service) RefreshTrending(ctx context.Context) error {
	movies, err := s.FetchTrending(ctx)
	if err != nil {
		return fmt.Errorf("refresh trending: %w", err)
	}

	s.trendingMu.Lock()
	s.trending = movies
	s.trendingFetchedAt = time.Now()
	s.trendingMu.Unlock()

	s.logger.Info().Int("movies", len(movies)).Msg("Refreshed trending movies")
	return nil
}

// Trending returns the cached trending list, fetching it first if nothing is cached yet.
func (s *Service) Trending(ctx context.Context) ([]TrendingMovie, time.Time, error) {
	s.trendingMu.RLock()
	movies, fetchedAt := s.trending, s.trendingFetchedAt
	s.trendingMu.RUnlock()

	if movies != nil {
		return movies, fetchedAt, nil
	}

	if err := s.RefreshTrending(ctx); err != nil {
		return nil, time.Time{}, err
	}

	s.trendingMu.RLock()
	defer s.trendingMu.RUnlock()
	return s.trending, s.trendingFetchedAt, nil
}

// CacheStats returns counters for the id resolution cache.
func (s *Service) CacheStats() CacheStats {
	return s.ids.Stats()
}

// ClearCache drops all cached id resolutions and the trending list.
func (s *Service) ClearCache() {
	s.ids.Clear()

	s.trendingMu.Lock()
	s.trending = nil
	s.trendingFetchedAt = time.Time{}
	s.trendingMu.Unlock()

	s.logger.Info().Msg("Cleared metadata cache")
}

// logFailure records a degraded lookup. Not-found answers are expected and logged at debug.
func (s *Service) logFailure(err error, field, imdbID string) {
	kind := httpclient.KindOf(err)
	metrics.EnrichmentFailures.WithLabelValues(field, kind.String()).Inc()

	event := s.logger.Warn()
	if kind == httpclient.KindNotFound {
		event = s.logger.Debug()
	}
	event.Err(err).Str("field", field).Str("imdbId", imdbID).Str("kind", kind.String()).Msg("Metadata lookup failed")
}

// FormatCurrency renders a whole-dollar amount as "$1,234", or "N/A" when not positive.
func FormatCurrency(amount int64) string {
	if amount <= 0 {
		return NotAvailable
	}
	return "$" + humanize.Comma(amount)
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func joinOrNotAvailable(values []string) string {
	if len(values) == 0 {
		return NotAvailable
	}
	return strings.Join(values, ", ")
}
