package metadata

import (
	"context"

	"github.com/cinematch/cinematch/internal/metadata/tmdb"
)

// TMDBClient defines the interface for TMDB API operations.
type TMDBClient interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	FindByIMDbID(ctx context.Context, imdbID string) (int, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetMovieWithCredits(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetMovieVideos(ctx context.Context, id int) ([]tmdb.Video, error)
	GetTrendingMovies(ctx context.Context) ([]tmdb.MovieResult, error)
	GetImageURL(path string, size string) string
}
