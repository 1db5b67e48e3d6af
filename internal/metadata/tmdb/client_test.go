package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/config"
	"github.com/cinematch/cinematch/internal/httpclient"
)

func newTestClient(server *httptest.Server) *Client {
	cfg := config.TMDBConfig{
		APIKey:       "test-api-key",
		BaseURL:      server.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Timeout:      5,
		Retries:      2,
	}
	return NewClient(cfg, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestClient_Name(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())
	if client.Name() != "tmdb" {
		t.Errorf("Name() = %q, want %q", client.Name(), "tmdb")
	}
}

func TestClient_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"with key", "abc123", true},
		{"without key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.TMDBConfig{APIKey: tt.apiKey}, zerolog.Nop())
			if got := client.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())

	if _, err := client.FindByIMDbID(context.Background(), "tt0133093"); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("FindByIMDbID() error = %v, want ErrAPIKeyMissing", err)
	}
	if _, err := client.GetTrendingMovies(context.Background()); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("GetTrendingMovies() error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestClient_FindByIMDbID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt0133093" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("external_source"); got != "imdb_id" {
			t.Errorf("external_source = %q, want imdb_id", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-api-key" {
			t.Errorf("api_key = %q, want test-api-key", got)
		}
		json.NewEncoder(w).Encode(FindResponse{
			MovieResults: []MovieResult{{ID: 603, Title: "The Matrix"}, {ID: 999}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	id, err := client.FindByIMDbID(context.Background(), "tt0133093")
	if err != nil {
		t.Fatalf("FindByIMDbID() error = %v", err)
	}
	if id != 603 {
		t.Errorf("FindByIMDbID() = %d, want 603", id)
	}
}

func TestClient_FindByIMDbID_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"movie_results":[],"tv_results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.FindByIMDbID(context.Background(), "tt0000000")
	if !errors.Is(err, httpclient.ErrNotFound) {
		t.Errorf("FindByIMDbID() error = %v, want not found", err)
	}
}

func TestClient_GetMovieWithCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits,videos" {
			t.Errorf("append_to_response = %q, want credits,videos", got)
		}
		json.NewEncoder(w).Encode(MovieDetails{
			ID:     603,
			Title:  "The Matrix",
			Budget: 63000000,
			Credits: &CreditsResponse{Cast: []CastMember{
				{Name: "Keanu Reeves", Character: "Neo", ProfilePath: strPtr("/keanu.jpg")},
			}},
			Videos: &VideosResponse{Results: []Video{{Key: "abc", Site: "YouTube", Type: "Trailer"}}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	details, err := client.GetMovieWithCredits(context.Background(), 603)
	if err != nil {
		t.Fatalf("GetMovieWithCredits() error = %v", err)
	}
	if details.Budget != 63000000 {
		t.Errorf("Budget = %d, want 63000000", details.Budget)
	}
	if details.Credits == nil || len(details.Credits.Cast) != 1 {
		t.Fatalf("Credits not decoded: %+v", details.Credits)
	}
	if details.Videos == nil || len(details.Videos.Results) != 1 {
		t.Fatalf("Videos not decoded: %+v", details.Videos)
	}
}

func TestClient_GetMovie_NotFound(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{StatusCode: 34, StatusMessage: "The resource you requested could not be found."})
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.GetMovie(context.Background(), 1)
	if !errors.Is(err, httpclient.ErrNotFound) {
		t.Errorf("GetMovie() error = %v, want not found", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (404 is not retried)", calls)
	}
}

func TestClient_GetMovieVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603/videos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(VideosResponse{Results: []Video{
			{Key: "teaser", Site: "YouTube", Type: "Teaser"},
			{Key: "main", Site: "YouTube", Type: "Trailer"},
		}})
	}))
	defer server.Close()

	client := newTestClient(server)
	videos, err := client.GetMovieVideos(context.Background(), 603)
	if err != nil {
		t.Fatalf("GetMovieVideos() error = %v", err)
	}
	if len(videos) != 2 || videos[1].Key != "main" {
		t.Errorf("GetMovieVideos() = %+v", videos)
	}
}

func TestClient_GetTrendingMovies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending/movie/week" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TrendingResponse{Results: []MovieResult{
			{ID: 1, Title: "One"}, {ID: 2, Title: "Two"},
		}})
	}))
	defer server.Close()

	client := newTestClient(server)
	results, err := client.GetTrendingMovies(context.Background())
	if err != nil {
		t.Fatalf("GetTrendingMovies() error = %v", err)
	}
	if len(results) != 2 || results[0].Title != "One" {
		t.Errorf("GetTrendingMovies() = %+v", results)
	}
}

func TestClient_GetImageURL(t *testing.T) {
	client := NewClient(config.TMDBConfig{ImageBaseURL: "https://image.tmdb.org/t/p"}, zerolog.Nop())

	if got := client.GetImageURL("/abc.jpg", "w500"); got != "https://image.tmdb.org/t/p/w500/abc.jpg" {
		t.Errorf("GetImageURL() = %q", got)
	}
	if got := client.GetImageURL("", "w500"); got != "" {
		t.Errorf("GetImageURL(empty) = %q, want empty", got)
	}
}

func TestTrailerURL(t *testing.T) {
	tests := []struct {
		name   string
		videos []Video
		want   string
		ok     bool
	}{
		{"none", nil, "", false},
		{
			"first trailer wins",
			[]Video{
				{Key: "clip", Site: "YouTube", Type: "Clip"},
				{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
				{Key: "first", Site: "YouTube", Type: "Trailer"},
				{Key: "second", Site: "YouTube", Type: "Trailer"},
			},
			"https://youtu.be/first", true,
		},
		{"no matching site", []Video{{Key: "x", Site: "Vimeo", Type: "Trailer"}}, "", false},
		{"first match without key", []Video{{Site: "YouTube", Type: "Trailer"}, {Key: "b", Site: "YouTube", Type: "Trailer"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TrailerURL(tt.videos)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TrailerURL() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
