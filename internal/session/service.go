package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service loads, updates and expires viewer sessions.
type Service struct {
	store       Store
	historySize int
	now         func() time.Time
	logger      zerolog.Logger

	// mu serializes read-modify-write updates so concurrent requests on
	// one session never overwrite each other's history.
	mu sync.Mutex
}

// NewService creates a session service over store.
func NewService(store Store, historySize int, logger zerolog.Logger) *Service {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Service{
		store:       store,
		historySize: historySize,
		now:         time.Now,
		logger:      logger.With().Str("component", "session").Logger(),
	}
}

// Load returns the state for id. An unknown but well-formed id starts an
// empty session under that id; an empty or malformed one gets a new id.
// New sessions are saved right away so the id stays stable across requests.
func (s *Service) Load(ctx context.Context, id string) (*State, error) {
	if _, err := uuid.Parse(id); err == nil {
		state, err := s.store.Get(ctx, id)
		if err == nil {
			state.historySize = s.historySize
			return state, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	} else {
		id = uuid.NewString()
	}

	state := NewState(id, s.historySize)
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("sessionId", state.ID).Msg("Started new session")
	return state, nil
}

// Save stamps the state and persists it.
func (s *Service) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = s.now()
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save session %s: %w", state.ID, err)
	}
	return nil
}

// RecordSelect marks imdbID as chosen through search and saves the session.
func (s *Service) RecordSelect(ctx context.Context, state *State, imdbID string) error {
	return s.update(ctx, state, func(st *State) { st.Select(imdbID) })
}

// RecordSurprise marks imdbID as chosen at random and saves the session.
func (s *Service) RecordSurprise(ctx context.Context, state *State, imdbID string) error {
	return s.update(ctx, state, func(st *State) { st.Surprise(imdbID) })
}

// update re-reads the stored session, applies fn and saves the result.
// state is refreshed in place so the caller sees the saved view.
func (s *Service) update(ctx context.Context, state *State, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.Get(ctx, state.ID)
	switch {
	case err == nil:
		state.Mode = stored.Mode
		state.SelectedID = stored.SelectedID
		state.History = stored.History
		state.UpdatedAt = stored.UpdatedAt
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("reload session %s: %w", state.ID, err)
	}

	fn(state)
	return s.Save(ctx, state)
}

// Purge deletes sessions idle for longer than maxAge.
func (s *Service) Purge(ctx context.Context, maxAge time.Duration) error {
	n, err := s.store.PurgeBefore(ctx, s.now().Add(-maxAge))
	if err != nil {
		return err
	}
	s.logger.Info().Int64("removed", n).Dur("maxAge", maxAge).Msg("Purged idle sessions")
	return nil
}
