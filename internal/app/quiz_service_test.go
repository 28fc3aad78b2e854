package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestStartQuiz(t *testing.T) {
	started := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)
	service := newTestService(func() time.Time { return started })

	session, err := service.StartQuiz(context.Background(), "  Alice ")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	quiz := session.Quiz()
	if quiz.PlayerName != "Alice" {
		t.Fatalf("expected trimmed name, got %q", quiz.PlayerName)
	}
	if quiz.StartedAt != started.UnixMilli() {
		t.Fatalf("expected start time %d, got %d", started.UnixMilli(), quiz.StartedAt)
	}
	if quiz.ID != 0 {
		t.Fatalf("new quiz must not carry an id")
	}
	if session.Current().Text != "Pick a color" {
		t.Fatalf("unexpected first question %q", session.Current().Text)
	}
}

func TestStartQuizRejectsShortName(t *testing.T) {
	service := newTestService(time.Now)
	for _, name := range []string{"", "Al", "  B  "} {
		if _, err := service.StartQuiz(context.Background(), name); !errors.Is(err, domain.ErrInvalidPlayerName) {
			t.Fatalf("name %q: expected ErrInvalidPlayerName, got %v", name, err)
		}
	}
}

func TestStartQuizSessionsDoNotShareSelections(t *testing.T) {
	service := newTestService(time.Now)
	first, err := service.StartQuiz(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	_, _ = first.Select(0)

	second, err := service.StartQuiz(context.Background(), "Bob")
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if second.HasSelection() {
		t.Fatalf("selection leaked across sessions through the bank cache")
	}
}

func TestStartQuizUnknownBank(t *testing.T) {
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(nil), time.Minute)
	service := app.NewQuizService(banks, "missing")
	if _, err := service.StartQuiz(context.Background(), "Alice"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func newTestService(now func() time.Time) *app.QuizService {
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(map[string][]domain.Question{
		"test": colorFruitQuiz().Questions,
	}), 5*time.Minute)
	return app.NewQuizServiceWithClock(banks, "test", now)
}
