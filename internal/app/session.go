package app

import (
	"sync"

	"trivia-quiz/internal/domain"
)

// State is what a presentation layer needs after every transition.
type State struct {
	Question     domain.Question `json:"question"`
	HasSelection bool            `json:"hasSelection"`
	Index        int             `json:"index"`
	Total        int             `json:"total"`
}

// Session drives one player through the questions of a quiz.
// The cursor is an index; questions are never looked up by text.
type Session struct {
	mu          sync.RWMutex
	quiz        domain.Quiz
	cursor      int
	subscribers map[chan State]struct{}
}

// NewSession validates quiz and wraps a private copy of it.
func NewSession(quiz domain.Quiz) (*Session, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		quiz:        quiz.Clone(),
		subscribers: make(map[chan State]struct{}),
	}, nil
}

// Current returns a copy of the question under the cursor.
func (s *Session) Current() domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz.Questions[s.cursor].Clone()
}

// HasSelection reports whether the current question has a selected choice.
func (s *Session) HasSelection() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz.Questions[s.cursor].HasSelection()
}

// Position returns the cursor and the number of questions.
func (s *Session) Position() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, len(s.quiz.Questions)
}

// Snapshot returns the current state without publishing it.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// UpdateSelection replaces the choices of the current question. The caller
// builds the list according to the question's selection mode. An empty list
// is ignored since a question always keeps its choices.
func (s *Session) UpdateSelection(choices []domain.Choice) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(choices) == 0 {
		return s.snapshotLocked()
	}

	updated := make([]domain.Choice, len(choices))
	copy(updated, choices)
	s.quiz.Questions[s.cursor].Choices = updated
	return s.broadcastLocked()
}

// Select applies the selection rule of the current question to choice i.
func (s *Session) Select(i int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	choices, err := s.quiz.Questions[s.cursor].Select(i)
	if err != nil {
		return s.snapshotLocked(), err
	}
	s.quiz.Questions[s.cursor].Choices = choices
	return s.broadcastLocked(), nil
}

// Advance moves to the next question. It returns false without changing
// anything when the cursor is on the last question, which means the quiz is complete.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor+1 >= len(s.quiz.Questions) {
		return false
	}
	s.cursor++
	s.broadcastLocked()
	return true
}

// Retreat moves to the previous question. It returns false without changing
// anything on the first question; callers treat that as a request to abandon.
func (s *Session) Retreat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor == 0 {
		return false
	}
	s.cursor--
	s.broadcastLocked()
	return true
}

// Quiz returns a deep copy of the quiz with the selections made so far.
func (s *Session) Quiz() domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz.Clone()
}

// Subscribe returns a channel primed with the current state that receives
// every later state. The cancel func closes the channel and may be called twice.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() State {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// drop the oldest state so a slow reader cannot block navigation
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}

func (s *Session) snapshotLocked() State {
	current := s.quiz.Questions[s.cursor]
	return State{
		Question:     current.Clone(),
		HasSelection: current.HasSelection(),
		Index:        s.cursor,
		Total:        len(s.quiz.Questions),
	}
}
