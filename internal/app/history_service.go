package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"trivia-quiz/internal/domain"
)

// HistoryRepository abstracts where completed quizzes are kept (memory, SQLite, Postgres...).
// ListAll returns records ascending by id and an empty, non-nil slice when there are none.
type HistoryRepository interface {
	Append(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	ListAll(ctx context.Context) ([]domain.Quiz, error)
}

// PendingAppend is the result of a queued history write.
type PendingAppend struct {
	done chan struct{}
	quiz domain.Quiz
	err  error
}

func newPendingAppend() *PendingAppend {
	return &PendingAppend{done: make(chan struct{})}
}

func (p *PendingAppend) resolve(quiz domain.Quiz, err error) {
	p.quiz, p.err = quiz, err
	close(p.done)
}

// Done is closed once the write finished.
func (p *PendingAppend) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write finished or ctx is done. Giving up on the wait
// does not cancel the write.
func (p *PendingAppend) Wait(ctx context.Context) (domain.Quiz, error) {
	select {
	case <-p.done:
		return p.quiz, p.err
	case <-ctx.Done():
		return domain.Quiz{}, ctx.Err()
	}
}

type appendTask struct {
	ctx     context.Context
	quiz    domain.Quiz
	pending *PendingAppend
}

// HistoryService writes completed quizzes on a single background worker and
// reads the history back.
type HistoryService struct {
	repo HistoryRepository
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
	tasks  chan appendTask
	done   chan struct{}
}

// NewHistoryService starts the background writer; call Close to stop it.
func NewHistoryService(repo HistoryRepository, log *zap.Logger) *HistoryService {
	s := &HistoryService{
		repo:  repo,
		log:   log,
		tasks: make(chan appendTask, 32),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *HistoryService) run() {
	defer close(s.done)
	for task := range s.tasks {
		stored, err := s.repo.Append(task.ctx, task.quiz)
		if err != nil {
			err = storageError("append quiz", err)
			s.log.Error("quiz history write failed",
				zap.String("player", task.quiz.PlayerName),
				zap.Error(err),
			)
		} else {
			s.log.Info("quiz stored",
				zap.Int64("id", stored.ID),
				zap.String("player", stored.PlayerName),
			)
		}
		task.pending.resolve(stored, err)
	}
}

// AppendAsync queues quiz for storage and returns immediately. The write is
// not canceled with ctx.
func (s *HistoryService) AppendAsync(ctx context.Context, quiz domain.Quiz) *PendingAppend {
	pending := newPendingAppend()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		pending.resolve(domain.Quiz{}, fmt.Errorf("%w: history writer closed", domain.ErrStorageUnavailable))
		return pending
	}
	s.tasks <- appendTask{
		ctx:     context.WithoutCancel(ctx),
		quiz:    quiz.Clone(),
		pending: pending,
	}
	return pending
}

// Append stores quiz and waits for the assigned id.
func (s *HistoryService) Append(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	return s.AppendAsync(ctx, quiz).Wait(ctx)
}

// ListAll returns every stored quiz. An empty history is not an error.
func (s *HistoryService) ListAll(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storageError("list quizzes", err)
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	return quizzes, nil
}

// Close stops accepting writes and waits for queued ones to finish.
func (s *HistoryService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.tasks)
	}
	s.mu.Unlock()
	<-s.done
}

// storageError keeps serialization errors as they are and tags anything else
// as a storage failure.
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) ||
		errors.Is(err, domain.ErrSerializationFailed) ||
		errors.Is(err, domain.ErrDeserialization) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
