package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store persists session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}

// SQLStore keeps sessions in the sessions and session_history tables.
type SQLStore struct {
	db          *sql.DB
	historySize int
}

// NewSQLStore creates a store over an already-migrated database.
func NewSQLStore(db *sql.DB, historySize int) *SQLStore {
	return &SQLStore{db: db, historySize: historySize}
}

// Get loads a session with its history in viewing order.
func (s *SQLStore) Get(ctx context.Context, id string) (*State, error) {
	state := NewState(id, s.historySize)

	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT mode, selected_id, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&mode, &state.SelectedID, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	state.Mode = Mode(mode)

	rows, err := s.db.QueryContext(ctx,
		`SELECT imdb_id FROM session_history WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get session history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var imdbID string
		if err := rows.Scan(&imdbID); err != nil {
			return nil, fmt.Errorf("scan session history: %w", err)
		}
		state.History = append(state.History, imdbID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}

	return state, nil
}

// Save upserts the session and replaces its history.
func (s *SQLStore) Save(ctx context.Context, state *State) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	state.UpdatedAt = state.UpdatedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, mode, selected_id, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode = excluded.mode,
			selected_id = excluded.selected_id,
			updated_at = excluded.updated_at`,
		state.ID, string(state.Mode), state.SelectedID, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_history WHERE session_id = ?`, state.ID); err != nil {
		return fmt.Errorf("clear session history: %w", err)
	}
	for i, imdbID := range state.History {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_history (session_id, position, imdb_id) VALUES (?, ?, ?)`,
			state.ID, i, imdbID); err != nil {
			return fmt.Errorf("save session history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// PurgeBefore deletes sessions last updated before t and returns how many were removed.
func (s *SQLStore) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, t.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
