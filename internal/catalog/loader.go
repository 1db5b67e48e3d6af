package catalog

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyID       = errors.New("empty movie id")
	ErrDuplicateID   = errors.New("duplicate movie id")
	ErrShape         = errors.New("similarity matrix shape mismatch")
	ErrEmptyTable    = errors.New("movie table is empty")
)

// Accepted header names per column, first match wins.
var (
	idColumns       = []string{"imdb_id", "external_id"}
	titleColumns    = []string{"original_title", "display_title", "title"}
	directorColumns = []string{"director"}
)

// Load reads the movie table and the similarity matrix and validates that they agree.
// The matrix format is chosen by extension: .json holds [][]float64, anything else
// is headerless CSV. A trailing .gz on either file means gzip compression.
func Load(moviesPath, similarityPath string) (*Catalog, error) {
	movies, err := LoadMovies(moviesPath)
	if err != nil {
		return nil, err
	}

	matrix, err := LoadMatrix(similarityPath)
	if err != nil {
		return nil, err
	}

	return New(movies, matrix)
}

// LoadMovies reads a movie table CSV with a header row.
func LoadMovies(path string) ([]Movie, error) {
	r, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read movie table header %s: %w", path, err)
	}

	idCol := findColumn(header, idColumns)
	if idCol < 0 {
		return nil, fmt.Errorf("movie table %s: %w: %s", path, ErrMissingColumn, idColumns[0])
	}
	titleCol := findColumn(header, titleColumns)
	if titleCol < 0 {
		return nil, fmt.Errorf("movie table %s: %w: %s", path, ErrMissingColumn, titleColumns[0])
	}
	directorCol := findColumn(header, directorColumns)

	var movies []Movie
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read movie table %s: %w", path, err)
		}

		m := Movie{
			ImdbID: strings.TrimSpace(record[idCol]),
			Title:  strings.TrimSpace(record[titleCol]),
		}
		if directorCol >= 0 {
			m.Director = strings.TrimSpace(record[directorCol])
		}
		if m.ImdbID == "" {
			return nil, fmt.Errorf("movie table %s line %d: %w", path, line, ErrEmptyID)
		}
		movies = append(movies, m)
	}

	return movies, nil
}

// LoadMatrix reads a similarity matrix from CSV or JSON.
func LoadMatrix(path string) ([][]float64, error) {
	r, closeFn, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if strings.EqualFold(filepath.Ext(strings.TrimSuffix(path, ".gz")), ".json") {
		var matrix [][]float64
		if err := json.NewDecoder(r).Decode(&matrix); err != nil {
			return nil, fmt.Errorf("decode similarity matrix %s: %w", path, err)
		}
		return matrix, nil
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	// Row width is checked against the table, not against the first row.
	reader.FieldsPerRecord = -1

	var matrix [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read similarity matrix %s: %w", path, err)
		}

		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("similarity matrix %s line %d column %d: %w", path, line, j+1, err)
			}
			row[j] = v
		}
		matrix = append(matrix, row)
	}

	return matrix, nil
}

func validate(movies []Movie, matrix [][]float64) error {
	if len(movies) == 0 {
		return ErrEmptyTable
	}

	seen := make(map[string]int, len(movies))
	for i, m := range movies {
		if m.ImdbID == "" {
			return fmt.Errorf("row %d: %w", i, ErrEmptyID)
		}
		if prev, ok := seen[m.ImdbID]; ok {
			return fmt.Errorf("rows %d and %d: %w: %s", prev, i, ErrDuplicateID, m.ImdbID)
		}
		seen[m.ImdbID] = i
	}

	if len(matrix) != len(movies) {
		return fmt.Errorf("%w: %d rows for %d movies", ErrShape, len(matrix), len(movies))
	}
	for i, row := range matrix {
		if len(row) != len(movies) {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), len(movies))
		}
	}
	return nil
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
				return i
			}
		}
	}
	return -1
}

// open returns a reader for path, transparently decompressing .gz files.
func open(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		return f, func() { _ = f.Close() }, nil
	}

	gzr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return gzr, func() {
		_ = gzr.Close()
		_ = f.Close()
	}, nil
}
