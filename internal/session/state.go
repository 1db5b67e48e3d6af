// Package session tracks per-viewer view state: what the viewer is looking at
// and which movies they viewed recently.
package session

import (
	"time"
)

// Mode says how the current selection was made.
type Mode string

const (
	ModeNone     Mode = ""
	ModeSearch   Mode = "search"
	ModeSurprise Mode = "surprise"
)

// DefaultHistorySize is the number of recently viewed movies kept per session.
const DefaultHistorySize = 5

// State is the view state of one viewer session.
type State struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	SelectedID string    `json:"selectedId,omitempty"`
	History    []string  `json:"history"`
	UpdatedAt  time.Time `json:"updatedAt"`

	historySize int
}

// NewState creates an empty state for session id.
func NewState(id string, historySize int) *State {
	return &State{
		ID:          id,
		History:     []string{},
		historySize: historySize,
	}
}

// Push appends imdbID to the recently viewed list, oldest first.
// Only a repeat of the most recent entry is dropped; the list keeps the
// newest entries when it outgrows the history size.
func (s *State) Push(imdbID string) {
	if imdbID == "" {
		return
	}
	if n := len(s.History); n > 0 && s.History[n-1] == imdbID {
		return
	}

	s.History = append(s.History, imdbID)
	if limit := s.limit(); len(s.History) > limit {
		s.History = append([]string(nil), s.History[len(s.History)-limit:]...)
	}
}

// Select records a movie chosen through search.
func (s *State) Select(imdbID string) {
	s.Mode = ModeSearch
	s.SelectedID = imdbID
	s.Push(imdbID)
}

// Surprise records a movie chosen at random.
func (s *State) Surprise(imdbID string) {
	s.Mode = ModeSurprise
	s.SelectedID = imdbID
	s.Push(imdbID)
}

// Recent returns the recently viewed list, newest first.
func (s *State) Recent() []string {
	out := make([]string, len(s.History))
	for i, id := range s.History {
		out[len(s.History)-1-i] = id
	}
	return out
}

func (s *State) limit() int {
	if s.historySize <= 0 {
		return DefaultHistorySize
	}
	return s.historySize
}
