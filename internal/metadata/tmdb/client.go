package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/httpclient"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrMovieNotFound = errors.New("movie not found")
)

// Video hosting constants used to pick a trailer.
const (
	VideoTypeTrailer = "Trailer"
	VideoSiteYouTube = "YouTube"
)

// Client is a TMDB API client.
type Client struct {
	http   *httpclient.Client
	config config.TMDBConfig
	logger zerolog.Logger
}

// NewClient creates a new TMDB client using the retry policy from cfg.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	httpc := httpclient.New(httpclient.Config{
		Timeout:       cfg.RequestTimeout(),
		Retries:       cfg.Retries,
		BackoffFactor: cfg.Backoff(),
		RateLimit:     cfg.RateLimit,
	}, logger)

	return &Client{
		http:   httpc,
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}
	return c.get(ctx, "configuration", "/configuration", nil, &result)
}

// FindByIMDbID resolves an IMDb id to the TMDB movie id.
// Returns a not-found FetchError when TMDB knows no movie for the id.
func (c *Client) FindByIMDbID(ctx context.Context, imdbID string) (int, error) {
	if !c.IsConfigured() {
		return 0, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var response FindResponse
	if err := c.get(ctx, "find", "/find/"+url.PathEscape(imdbID), params, &response); err != nil {
		return 0, err
	}

	if len(response.MovieResults) == 0 || response.MovieResults[0].ID == 0 {
		return 0, httpclient.NotFound("find", "no movie results for %s", imdbID)
	}

	id := response.MovieResults[0].ID
	c.logger.Debug().Str("imdbId", imdbID).Int("tmdbId", id).Msg("Resolved IMDb id")
	return id, nil
}

// GetMovie gets movie details by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	return c.getMovie(ctx, "movie", id, nil)
}

// GetMovieWithCredits gets movie details with credits and videos appended in one call.
func (c *Client) GetMovieWithCredits(ctx context.Context, id int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")
	return c.getMovie(ctx, "movie_full", id, params)
}

func (c *Client) getMovie(ctx context.Context, endpoint string, id int, params url.Values) (*MovieDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var details MovieDetails
	if err := c.get(ctx, endpoint, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("id", id).
		Str("title", details.Title).
		Msg("Got movie details")

	return &details, nil
}

// GetMovieVideos returns the videos for a movie in provider order.
func (c *Client) GetMovieVideos(ctx context.Context, id int) ([]Video, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var response VideosResponse
	if err := c.get(ctx, "videos", fmt.Sprintf("/movie/%d/videos", id), nil, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// GetTrendingMovies returns this week's trending movies in provider order.
func (c *Client) GetTrendingMovies(ctx context.Context) ([]MovieResult, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	var response TrendingResponse
	if err := c.get(ctx, "trending", "/trending/movie/week", nil, &response); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("results", len(response.Results)).Msg("Got trending movies")
	return response.Results, nil
}

// GetImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

// TrailerURL returns the watch URL of the first YouTube trailer in videos.
// Provider order decides between several trailers; a first match without a
// key yields no trailer.
func TrailerURL(videos []Video) (string, bool) {
	for _, v := range videos {
		if v.Type == VideoTypeTrailer && v.Site == VideoSiteYouTube {
			if v.Key == "" {
				return "", false
			}
			return "https://youtu.be/" + v.Key, true
		}
	}
	return "", false
}

// get builds the request URL and delegates to the retrying HTTP client.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, result any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.config.APIKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())
	return c.http.GetJSON(ctx, endpoint, reqURL, result)
}
