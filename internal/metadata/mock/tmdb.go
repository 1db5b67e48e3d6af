// Package mock provides an in-memory TMDB client for developer mode and tests.
package mock

import (
	"context"
	"sync"

	"github.com/cinematch/cinematch/internal/httpclient"
	"github.com/cinematch/cinematch/internal/metadata/tmdb"
)

// TMDBClient is a mock implementation of the TMDB client.
// Movies are keyed by TMDB id; IMDb ids map onto them through IMDbIDs.
type TMDBClient struct {
	mu sync.Mutex

	IMDbIDs  map[string]int
	Movies   map[int]tmdb.MovieDetails
	Videos   map[int][]tmdb.Video
	Trending []tmdb.MovieResult

	// Err, when set, is returned by every lookup to simulate an outage.
	Err error

	calls map[string]int
}

// NewTMDBClient creates a mock TMDB client seeded with a small canned catalog.
func NewTMDBClient() *TMDBClient {
	c := NewEmptyTMDBClient()
	for _, m := range mockMovies {
		c.AddMovie(m.imdbID, m.details, m.videos...)
		c.Trending = append(c.Trending, tmdb.MovieResult{
			ID:         m.details.ID,
			Title:      m.details.Title,
			PosterPath: m.details.PosterPath,
		})
	}
	return c
}

// NewEmptyTMDBClient creates a mock TMDB client that knows no movies.
func NewEmptyTMDBClient() *TMDBClient {
	return &TMDBClient{
		IMDbIDs: make(map[string]int),
		Movies:  make(map[int]tmdb.MovieDetails),
		Videos:  make(map[int][]tmdb.Video),
		calls:   make(map[string]int),
	}
}

// AddMovie registers a movie under its IMDb id.
func (c *TMDBClient) AddMovie(imdbID string, details tmdb.MovieDetails, videos ...tmdb.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.IMDbIDs[imdbID] = details.ID
	c.Movies[details.ID] = details
	if len(videos) > 0 {
		c.Videos[details.ID] = videos
	}
}

// SetError makes every subsequent lookup fail with err (nil restores normal behavior).
func (c *TMDBClient) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Err = err
}

// Calls returns how many times method was invoked.
func (c *TMDBClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *TMDBClient) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	return c.Err
}

func (c *TMDBClient) Name() string {
	return "tmdb-mock"
}

func (c *TMDBClient) IsConfigured() bool {
	return true
}

func (c *TMDBClient) Test(ctx context.Context) error {
	return c.record("Test")
}

func (c *TMDBClient) GetImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

func (c *TMDBClient) FindByIMDbID(ctx context.Context, imdbID string) (int, error) {
	if err := c.record("FindByIMDbID"); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.IMDbIDs[imdbID]
	if !ok {
		return 0, httpclient.NotFound("find", "no movie results for %s", imdbID)
	}
	return id, nil
}

func (c *TMDBClient) GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	if err := c.record("GetMovie"); err != nil {
		return nil, err
	}
	return c.movie(id, false)
}

func (c *TMDBClient) GetMovieWithCredits(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	if err := c.record("GetMovieWithCredits"); err != nil {
		return nil, err
	}
	return c.movie(id, true)
}

func (c *TMDBClient) GetMovieVideos(ctx context.Context, id int) ([]tmdb.Video, error) {
	if err := c.record("GetMovieVideos"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Movies[id]; !ok {
		return nil, httpclient.NotFound("videos", "movie %d", id)
	}
	return c.Videos[id], nil
}

func (c *TMDBClient) GetTrendingMovies(ctx context.Context) ([]tmdb.MovieResult, error) {
	if err := c.record("GetTrendingMovies"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tmdb.MovieResult(nil), c.Trending...), nil
}

func (c *TMDBClient) movie(id int, appended bool) (*tmdb.MovieDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.Movies[id]
	if !ok {
		return nil, httpclient.NotFound("movie", "movie %d", id)
	}
	if appended {
		m.Videos = &tmdb.VideosResponse{Results: c.Videos[id]}
	} else {
		m.Credits = nil
		m.Videos = nil
	}
	return &m, nil
}

func strPtr(s string) *string { return &s }

type mockMovie struct {
	imdbID  string
	details tmdb.MovieDetails
	videos  []tmdb.Video
}

var mockMovies = []mockMovie{
	{
		imdbID: "tt0133093",
		details: tmdb.MovieDetails{
			ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", Runtime: 136,
			Overview:    "A computer hacker learns about the true nature of reality.",
			Tagline:     "Welcome to the Real World.",
			VoteAverage: 8.2, VoteCount: 24000,
			Budget: 63000000, Revenue: 463517383,
			PosterPath:      strPtr("/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"),
			Genres:          []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
			SpokenLanguages: []tmdb.SpokenLanguage{{EnglishName: "English", Iso6391: "en"}},
			Credits: &tmdb.CreditsResponse{ID: 603, Cast: []tmdb.CastMember{
				{ID: 6384, Name: "Keanu Reeves", Character: "Neo", ProfilePath: strPtr("/4D0PpNI0kmP58hgrwGC3wCjxhnm.jpg")},
				{ID: 2975, Name: "Laurence Fishburne", Character: "Morpheus", ProfilePath: strPtr("/8suOhUmPbfKqDQ17jQ1Gy0mI3P4.jpg")},
				{ID: 530, Name: "Carrie-Anne Moss", Character: "Trinity"},
			}},
		},
		videos: []tmdb.Video{
			{Key: "vKQi3bBA1y8", Site: tmdb.VideoSiteYouTube, Type: tmdb.VideoTypeTrailer, Name: "Official Trailer", Official: true},
		},
	},
	{
		imdbID: "tt1375666",
		details: tmdb.MovieDetails{
			ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", Runtime: 148,
			Overview:    "Cobb steals secrets from the subconscious during the dream state.",
			Tagline:     "Your mind is the scene of the crime.",
			VoteAverage: 8.4, VoteCount: 35000,
			Budget: 160000000, Revenue: 839030630,
			PosterPath:      strPtr("/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"),
			Genres:          []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}, {ID: 12, Name: "Adventure"}},
			SpokenLanguages: []tmdb.SpokenLanguage{{EnglishName: "English", Iso6391: "en"}, {EnglishName: "Japanese", Iso6391: "ja"}},
			Credits: &tmdb.CreditsResponse{ID: 27205, Cast: []tmdb.CastMember{
				{ID: 6193, Name: "Leonardo DiCaprio", Character: "Dom Cobb", ProfilePath: strPtr("/wo2hJpn04vbtmh0B9utCFdsQhxM.jpg")},
				{ID: 24045, Name: "Joseph Gordon-Levitt", Character: "Arthur"},
			}},
		},
		videos: []tmdb.Video{
			{Key: "YoHD9XEInc0", Site: tmdb.VideoSiteYouTube, Type: tmdb.VideoTypeTrailer, Name: "Official Trailer", Official: true},
		},
	},
	{
		imdbID: "tt0816692",
		details: tmdb.MovieDetails{
			ID: 157336, Title: "Interstellar", ReleaseDate: "2014-11-05", Runtime: 169,
			Overview:    "Explorers travel through a wormhole in space.",
			VoteAverage: 8.4, VoteCount: 33000,
			Budget: 165000000, Revenue: 701729206,
			PosterPath:      strPtr("/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg"),
			Genres:          []tmdb.Genre{{ID: 12, Name: "Adventure"}, {ID: 18, Name: "Drama"}, {ID: 878, Name: "Science Fiction"}},
			SpokenLanguages: []tmdb.SpokenLanguage{{EnglishName: "English", Iso6391: "en"}},
			Credits: &tmdb.CreditsResponse{ID: 157336, Cast: []tmdb.CastMember{
				{ID: 10297, Name: "Matthew McConaughey", Character: "Cooper"},
				{ID: 1813, Name: "Anne Hathaway", Character: "Brand"},
			}},
		},
		videos: []tmdb.Video{
			{Key: "teaser1", Site: tmdb.VideoSiteYouTube, Type: "Teaser"},
			{Key: "zSWdZVtXT7E", Site: tmdb.VideoSiteYouTube, Type: tmdb.VideoTypeTrailer},
		},
	},
	{
		imdbID: "tt0468569",
		details: tmdb.MovieDetails{
			ID: 155, Title: "The Dark Knight", ReleaseDate: "2008-07-16", Runtime: 152,
			Overview:    "Batman raises the stakes in his war on crime.",
			VoteAverage: 8.5, VoteCount: 31000,
			Budget: 185000000, Revenue: 1004558444,
			PosterPath:      strPtr("/qJ2tW6WMUDux911r6m7haRef0WH.jpg"),
			Genres:          []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 28, Name: "Action"}, {ID: 80, Name: "Crime"}},
			SpokenLanguages: []tmdb.SpokenLanguage{{EnglishName: "English", Iso6391: "en"}, {EnglishName: "Mandarin", Iso6391: "zh"}},
			Credits: &tmdb.CreditsResponse{ID: 155, Cast: []tmdb.CastMember{
				{ID: 3894, Name: "Christian Bale", Character: "Bruce Wayne"},
				{ID: 1810, Name: "Heath Ledger", Character: "Joker"},
			}},
		},
	},
}
