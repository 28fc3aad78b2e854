package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz/internal/domain"
)

// HistoryRepository is an in-memory implementation of app.HistoryRepository.
type HistoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	quizzes map[int64]domain.Quiz
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		nextID:  1,
		quizzes: make(map[int64]domain.Quiz),
	}
}

// Append assigns an id when quiz has none and replaces any record with the same id.
func (r *HistoryRepository) Append(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := quiz.Clone()
	if stored.ID == 0 {
		stored.ID = r.nextID
	}
	if stored.ID >= r.nextID {
		r.nextID = stored.ID + 1
	}
	r.quizzes[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *HistoryRepository) ListAll(_ context.Context) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		out = append(out, quiz.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
