package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trivia-quiz/internal/domain"
)

// QuestionBankRepository loads question banks (from cache/backing store).
type QuestionBankRepository interface {
	GetBank(ctx context.Context, bankID string) ([]domain.Question, error)
}

// QuizService starts quiz sessions from a question bank.
type QuizService struct {
	banks  QuestionBankRepository
	bankID string
	now    func() time.Time
}

// NewQuizService starts quizzes from bankID using the wall clock.
func NewQuizService(banks QuestionBankRepository, bankID string) *QuizService {
	return NewQuizServiceWithClock(banks, bankID, time.Now)
}

// NewQuizServiceWithClock allows deterministic start timestamps in tests.
func NewQuizServiceWithClock(banks QuestionBankRepository, bankID string, now func() time.Time) *QuizService {
	return &QuizService{banks: banks, bankID: bankID, now: now}
}

// StartQuiz validates the player name and builds a session over a fresh copy of the bank.
func (s *QuizService) StartQuiz(ctx context.Context, playerName string) (*Session, error) {
	if !domain.ValidPlayerName(playerName) {
		return nil, domain.ErrInvalidPlayerName
	}

	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", s.bankID, err)
	}

	// NewSession copies the questions, so a cached bank is never mutated.
	quiz := domain.Quiz{
		PlayerName: strings.TrimSpace(playerName),
		StartedAt:  s.now().UnixMilli(),
		Questions:  bank,
	}
	return NewSession(quiz)
}
