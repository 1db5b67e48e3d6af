// Package catalog holds the static movie table and its precomputed
// similarity matrix. Both are loaded once at startup and never mutated.
package catalog

import (
	"strings"
)

// Movie is one row of the movie table.
type Movie struct {
	ImdbID   string `json:"imdbId"`
	Title    string `json:"title"`
	Director string `json:"director,omitempty"`
}

// Catalog is an immutable movie table paired with an N x N similarity matrix.
// Row i of the matrix scores movie i against every movie in table order.
type Catalog struct {
	movies []Movie
	matrix [][]float64
	index  map[string]int
	titles map[string][]string
}

// New builds a catalog from an already-validated table and matrix.
func New(movies []Movie, matrix [][]float64) (*Catalog, error) {
	if err := validate(movies, matrix); err != nil {
		return nil, err
	}

	c := &Catalog{
		movies: movies,
		matrix: matrix,
		index:  make(map[string]int, len(movies)),
		titles: make(map[string][]string),
	}
	for i, m := range movies {
		c.index[m.ImdbID] = i
		key := strings.ToLower(m.Title)
		c.titles[key] = append(c.titles[key], m.ImdbID)
	}
	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// At returns the movie at row i.
func (c *Catalog) At(i int) Movie {
	return c.movies[i]
}

// Index returns the row of the movie with the given IMDb id.
func (c *Catalog) Index(imdbID string) (int, bool) {
	i, ok := c.index[imdbID]
	return i, ok
}

// ByID returns the movie with the given IMDb id.
func (c *Catalog) ByID(imdbID string) (Movie, bool) {
	i, ok := c.index[imdbID]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// Row returns the similarity scores of movie i against every movie.
// The slice is shared and must not be modified.
func (c *Catalog) Row(i int) []float64 {
	return c.matrix[i]
}

// TitlesByID returns the IMDb ids of every movie whose title equals title, case-insensitively.
// More than one id means the title needs disambiguation.
func (c *Catalog) TitlesByID(title string) []string {
	return append([]string(nil), c.titles[strings.ToLower(title)]...)
}

// SearchTitles returns movies whose title contains query, case-insensitively, in table order.
// An empty query matches everything. limit <= 0 means no limit.
func (c *Catalog) SearchTitles(query string, limit int) []Movie {
	query = strings.ToLower(strings.TrimSpace(query))

	var results []Movie
	for _, m := range c.movies {
		if query != "" && !strings.Contains(strings.ToLower(m.Title), query) {
			continue
		}
		results = append(results, m)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}
