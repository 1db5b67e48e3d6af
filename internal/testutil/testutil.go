// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cinematch/cinematch/internal/catalog"
	"github.com/cinematch/cinematch/internal/database"
)

// TestDB wraps a migrated test database.
type TestDB struct {
	DB     *database.DB
	Logger zerolog.Logger
}

// NewTestDB creates a migrated database in a temp directory.
// It is closed automatically when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDB{
		DB:     db,
		Logger: NewTestLogger(t),
	}
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// Catalog ids shared with the mock TMDB client.
const (
	MatrixID       = "tt0133093"
	InceptionID    = "tt1375666"
	InterstellarID = "tt0816692"
	DarkKnightID   = "tt0468569"
	// UnknownToTMDB is in the catalog but not in the mock provider.
	UnknownToTMDB = "tt9999999"
)

// NewTestCatalog returns a five movie catalog. Row order matches the ids above.
func NewTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	movies := []catalog.Movie{
		{ImdbID: MatrixID, Title: "The Matrix", Director: "Lana Wachowski"},
		{ImdbID: InceptionID, Title: "Inception", Director: "Christopher Nolan"},
		{ImdbID: InterstellarID, Title: "Interstellar", Director: "Christopher Nolan"},
		{ImdbID: DarkKnightID, Title: "The Dark Knight", Director: "Christopher Nolan"},
		{ImdbID: UnknownToTMDB, Title: "Inception", Director: "Unknown"},
	}
	matrix := [][]float64{
		{1.0, 0.8, 0.6, 0.4, 0.1},
		{0.8, 1.0, 0.9, 0.7, 0.3},
		{0.6, 0.9, 1.0, 0.5, 0.2},
		{0.4, 0.7, 0.5, 1.0, 0.2},
		{0.1, 0.3, 0.2, 0.2, 1.0},
	}

	c, err := catalog.New(movies, matrix)
	if err != nil {
		t.Fatalf("Failed to build test catalog: %v", err)
	}
	return c
}
