package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinematch/cinematch/internal/catalog"
)

type fakeEnricher struct {
	mu      sync.Mutex
	fail    bool
	posters map[string]string
	calls   int
}

func (f *fakeEnricher) FetchPoster(_ context.Context, imdbID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return "", errors.New("provider down")
	}
	if url, ok := f.posters[imdbID]; ok {
		return url, nil
	}
	return "https://img/" + imdbID + ".jpg", nil
}

func (f *fakeEnricher) FetchTrailer(_ context.Context, imdbID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return "", errors.New("provider down")
	}
	return "https://youtu.be/" + imdbID, nil
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Movie{
			{ImdbID: "A", Title: "Alpha"},
			{ImdbID: "B", Title: "Bravo"},
			{ImdbID: "C", Title: "Charlie"},
			{ImdbID: "D", Title: "Delta"},
		},
		[][]float64{
			{1.0, 0.9, 0.2, 0.5},
			{0.9, 1.0, 0.3, 0.3},
			{0.2, 0.3, 1.0, 0.6},
			{0.5, 0.3, 0.6, 1.0},
		},
	)
	require.NoError(t, err)
	return c
}

func ids(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ImdbID
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		name  string
		row   []float64
		self  int
		count int
		want  []int
	}{
		{"descending", []float64{1.0, 0.9, 0.2, 0.5}, 0, 2, []int{1, 3}},
		{"ties keep row order", []float64{0.5, 1.0, 0.5, 0.5}, 1, 3, []int{0, 2, 3}},
		{"self tied at maximum is still excluded", []float64{1.0, 1.0, 1.0}, 1, 5, []int{0, 2}},
		{"fewer columns than count", []float64{1.0, 0.3}, 0, 5, []int{1}},
		{"no exclusion", []float64{0.1, 0.9}, -1, 5, []int{1, 0}},
		{"zero count", []float64{0.1, 0.9}, 0, 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.row, tt.self, tt.count)
			indexes := make([]int, len(got))
			for i, s := range got {
				indexes[i] = s.Index
			}
			assert.Equal(t, tt.want, indexes)
		})
	}
}

func TestEngine_Recommend(t *testing.T) {
	engine := NewEngine(newTestCatalog(t), &fakeEnricher{}, Config{}, zerolog.Nop())

	recs, err := engine.Recommend(context.Background(), "A", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "D"}, ids(recs))
	assert.Equal(t, "Bravo", recs[0].Title)
	assert.InDelta(t, 0.9, recs[0].Score, 1e-9)
	assert.Equal(t, "https://img/B.jpg", recs[0].PosterURL)
	assert.Equal(t, "https://youtu.be/D", recs[1].TrailerURL)
}

func TestEngine_Recommend_DefaultCount(t *testing.T) {
	engine := NewEngine(newTestCatalog(t), &fakeEnricher{}, Config{Count: 2}, zerolog.Nop())

	recs, err := engine.Recommend(context.Background(), "C", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B"}, ids(recs))
}

func TestEngine_Recommend_NeverIncludesSelf(t *testing.T) {
	c, err := catalog.New(
		[]catalog.Movie{{ImdbID: "X"}, {ImdbID: "Y"}, {ImdbID: "Z"}},
		[][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
	)
	require.NoError(t, err)
	engine := NewEngine(c, nil, Config{}, zerolog.Nop())

	for _, id := range []string{"X", "Y", "Z"} {
		recs, err := engine.Recommend(context.Background(), id, 5)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
		assert.NotContains(t, ids(recs), id)
	}
}

func TestEngine_Recommend_NoDuplicates(t *testing.T) {
	engine := NewEngine(newTestCatalog(t), nil, Config{}, zerolog.Nop())

	recs, err := engine.Recommend(context.Background(), "B", 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	seen := map[string]bool{}
	for _, r := range recs {
		assert.False(t, seen[r.ImdbID], "duplicate %s", r.ImdbID)
		seen[r.ImdbID] = true
	}
}

func TestEngine_Recommend_Deterministic(t *testing.T) {
	engine := NewEngine(newTestCatalog(t), &fakeEnricher{}, Config{}, zerolog.Nop())

	first, err := engine.Recommend(context.Background(), "D", 3)
	require.NoError(t, err)
	for range 10 {
		again, err := engine.Recommend(context.Background(), "D", 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngine_Recommend_UnknownID(t *testing.T) {
	engine := NewEngine(newTestCatalog(t), &fakeEnricher{}, Config{}, zerolog.Nop())

	_, err := engine.Recommend(context.Background(), "nope", 5)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestEngine_Recommend_EnrichmentOutage(t *testing.T) {
	enricher := &fakeEnricher{fail: true}
	engine := NewEngine(newTestCatalog(t), enricher, Config{Workers: 2}, zerolog.Nop())

	recs, err := engine.Recommend(context.Background(), "A", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "D", "C"}, ids(recs))
	for _, r := range recs {
		assert.Empty(t, r.PosterURL)
		assert.Empty(t, r.TrailerURL)
	}
	assert.Equal(t, 6, enricher.calls)
}

func TestEngine_Recommend_RankOrderWithManyWorkers(t *testing.T) {
	const n = 40
	movies := make([]catalog.Movie, n)
	matrix := make([][]float64, n)
	for i := range movies {
		movies[i] = catalog.Movie{ImdbID: fmt.Sprintf("tt%02d", i)}
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = float64(n-j) / n
		}
	}
	c, err := catalog.New(movies, matrix)
	require.NoError(t, err)

	engine := NewEngine(c, &fakeEnricher{}, Config{Workers: 8}, zerolog.Nop())
	recs, err := engine.Recommend(context.Background(), "tt00", 20)
	require.NoError(t, err)
	require.Len(t, recs, 20)
	for i, r := range recs {
		want := fmt.Sprintf("tt%02d", i+1)
		assert.Equal(t, want, r.ImdbID)
		assert.Equal(t, "https://img/"+want+".jpg", r.PosterURL)
	}
}

func TestEngine_Surprise(t *testing.T) {
	c := newTestCatalog(t)
	engine := NewEngine(c, &fakeEnricher{}, Config{}, zerolog.Nop(), WithRand(rand.New(rand.NewPCG(1, 2))))

	seen := map[string]bool{}
	for range 200 {
		rec, err := engine.Surprise(context.Background())
		require.NoError(t, err)
		_, ok := c.ByID(rec.ImdbID)
		require.True(t, ok, "surprise %s is not in the catalog", rec.ImdbID)
		assert.Equal(t, "https://img/"+rec.ImdbID+".jpg", rec.PosterURL)
		seen[rec.ImdbID] = true
	}
	assert.Len(t, seen, c.Len(), "every movie should come up eventually")
}

func TestEngine_Surprise_SeededIsReproducible(t *testing.T) {
	c := newTestCatalog(t)
	pick := func() []string {
		engine := NewEngine(c, nil, Config{}, zerolog.Nop(), WithRand(rand.New(rand.NewPCG(42, 7))))
		var out []string
		for range 10 {
			rec, err := engine.Surprise(context.Background())
			require.NoError(t, err)
			out = append(out, rec.ImdbID)
		}
		return out
	}
	assert.Equal(t, pick(), pick())
}
