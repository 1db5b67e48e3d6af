// Package recommend looks up the movies most similar to a given movie in the
// precomputed similarity matrix and decorates them with poster and trailer links.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/metrics"
)

var ErrMovieNotFound = errors.New("movie not found in catalog")

// Defaults used when the configuration leaves a value unset.
const (
	DefaultCount   = 5
	DefaultWorkers = 5
)

// Recommendation is a similar movie ready for display.
// PosterURL and TrailerURL are empty when the provider had nothing or failed.
type Recommendation struct {
	ImdbID     string  `json:"imdbId"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	PosterURL  string  `json:"posterUrl,omitempty"`
	TrailerURL string  `json:"trailerUrl,omitempty"`
}

// Scored pairs a catalog row with its similarity score.
type Scored struct {
	Index int
	Score float64
}

// Enricher supplies display links for a movie. Errors mean "no link".
type Enricher interface {
	FetchPoster(ctx context.Context, imdbID string) (string, error)
	FetchTrailer(ctx context.Context, imdbID string) (string, error)
}

// Config controls result size and enrichment concurrency.
type Config struct {
	Count   int
	Workers int
}

// Engine answers recommendation and surprise requests against a catalog.
// It is safe for concurrent use.
type Engine struct {
	catalog  *catalog.Catalog
	enricher Enricher
	cfg      Config
	logger   zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the random source used by Surprise.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine creates a recommendation engine.
func NewEngine(c *catalog.Catalog, enricher Enricher, cfg Config, logger zerolog.Logger, opts ...Option) *Engine {
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	e := &Engine{
		catalog:  c,
		enricher: enricher,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank orders row by descending score, keeping row order among ties, drops
// the entry at self and returns at most count entries.
// Pass self < 0 to keep every entry.
func Rank(row []float64, self, count int) []Scored {
	scored := make([]Scored, 0, len(row))
	for i, s := range row {
		if i == self {
			continue
		}
		scored = append(scored, Scored{Index: i, Score: s})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if count >= 0 && len(scored) > count {
		scored = scored[:count]
	}
	return scored
}

// Recommend returns the count movies most similar to imdbID, best first.
// count <= 0 uses the configured default. Enrichment failures leave the
// corresponding links empty and never fail the call.
func (e *Engine) Recommend(ctx context.Context, imdbID string, count int) ([]Recommendation, error) {
	start := time.Now()
	defer metrics.ObserveRecommend("similar", start)

	self, ok := e.catalog.Index(imdbID)
	if !ok {
		return nil, ErrMovieNotFound
	}
	if count <= 0 {
		count = e.cfg.Count
	}

	ranked := Rank(e.catalog.Row(self), self, count)

	recs := make([]Recommendation, len(ranked))
	for i, r := range ranked {
		m := e.catalog.At(r.Index)
		recs[i] = Recommendation{ImdbID: m.ImdbID, Title: m.Title, Score: r.Score}
	}

	e.enrich(ctx, recs)

	e.logger.Debug().
		Str("imdbId", imdbID).
		Int("count", count).
		Int("results", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("Computed recommendations")

	return recs, nil
}

// Surprise picks one movie uniformly at random and enriches it.
func (e *Engine) Surprise(ctx context.Context) (*Recommendation, error) {
	start := time.Now()
	defer metrics.ObserveRecommend("surprise", start)

	n := e.catalog.Len()
	if n == 0 {
		return nil, ErrMovieNotFound
	}

	e.rngMu.Lock()
	i := e.rng.IntN(n)
	e.rngMu.Unlock()

	m := e.catalog.At(i)
	recs := []Recommendation{{ImdbID: m.ImdbID, Title: m.Title, Score: 1}}
	e.enrich(ctx, recs)

	e.logger.Debug().Str("imdbId", m.ImdbID).Msg("Picked surprise movie")
	return &recs[0], nil
}

// enrich fills poster and trailer links on a bounded worker pool.
// Each result is written in place so rank order is preserved.
func (e *Engine) enrich(ctx context.Context, recs []Recommendation) {
	if e.enricher == nil || len(recs) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i := range recs {
		rec := &recs[i]
		g.Go(func() error {
			if url, err := e.enricher.FetchPoster(gctx, rec.ImdbID); err == nil {
				rec.PosterURL = url
			}
			return nil
		})
		g.Go(func() error {
			if url, err := e.enricher.FetchTrailer(gctx, rec.ImdbID); err == nil {
				rec.TrailerURL = url
			}
			return nil
		})
	}

	_ = g.Wait()
}
