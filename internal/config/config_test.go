package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 20, cfg.TMDB.Timeout)
	assert.Equal(t, 5, cfg.TMDB.Retries)
	assert.Equal(t, 1.0, cfg.TMDB.BackoffFactor)
	assert.Equal(t, 4096, cfg.TMDB.IDCacheSize)
	assert.Equal(t, 5, cfg.Recommend.Count)
	assert.Equal(t, 5, cfg.Session.HistorySize)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.MaxAge)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
tmdb:
  api_key: from-file
  retries: 2
catalog:
  movies_path: /data/movies.csv
  similarity_path: /data/similarity.json
session:
  max_age: 2h
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CINEMATCH_TMDB_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, 2, cfg.TMDB.Retries)
	assert.Equal(t, "/data/movies.csv", cfg.Catalog.MoviesPath)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TMDB.APIKey = ""

	err := cfg.Validate()
	assert.True(t, errors.Is(err, ErrAPIKeyMissing))
	assert.True(t, errors.Is(err, ErrCatalogPathsMissing))

	cfg.TMDB.APIKey = "key"
	cfg.Catalog = CatalogConfig{MoviesPath: "m.csv", SimilarityPath: "s.csv"}
	assert.NoError(t, cfg.Validate())

	// Developer mode serves canned metadata and needs no key.
	cfg.TMDB.APIKey = ""
	cfg.DeveloperMode = true
	assert.NoError(t, cfg.Validate())
}

func TestTMDBConfig_Durations(t *testing.T) {
	cfg := TMDBConfig{Timeout: 20, BackoffFactor: 0.5}
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Backoff())
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
