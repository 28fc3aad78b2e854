package memory

import (
	"context"
	"testing"

	"trivia-quiz/internal/domain"
)

func TestHistoryRepositoryAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		stored, err := repo.Append(ctx, sampleQuiz("Alice"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if stored.ID == 0 || seen[stored.ID] {
			t.Fatalf("expected fresh id, got %d", stored.ID)
		}
		seen[stored.ID] = true
	}
}

func TestHistoryRepositoryUpsertsOnExplicitID(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	first := sampleQuiz("Alice")
	first.ID = 7
	second := sampleQuiz("Bob")
	second.ID = 7
	if _, err := repo.Append(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if _, err := repo.Append(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].PlayerName != "Bob" {
		t.Fatalf("expected later write to win, got %+v", all)
	}

	fresh, err := repo.Append(ctx, sampleQuiz("Carol"))
	if err != nil {
		t.Fatalf("append fresh: %v", err)
	}
	if fresh.ID == 7 {
		t.Fatalf("auto id collided with explicit id")
	}
}

func TestHistoryRepositoryListsAscendingAndEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", all)
	}

	late := sampleQuiz("Late")
	late.ID = 10
	_, _ = repo.Append(ctx, late)
	_, _ = repo.Append(ctx, sampleQuiz("Auto"))
	early := sampleQuiz("Early")
	early.ID = 3
	_, _ = repo.Append(ctx, early)

	all, _ = repo.ListAll(ctx)
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("expected ascending ids, got %d then %d", all[i-1].ID, all[i].ID)
		}
	}
}

func TestHistoryRepositoryStoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()

	quiz := sampleQuiz("Alice")
	if _, err := repo.Append(ctx, quiz); err != nil {
		t.Fatalf("append: %v", err)
	}
	quiz.Questions[0].Choices[0].IsSelected = false

	all, _ := repo.ListAll(ctx)
	if !all[0].Questions[0].Choices[0].IsSelected {
		t.Fatalf("stored record changed through caller's quiz")
	}
}

func sampleQuiz(player string) domain.Quiz {
	return domain.Quiz{
		PlayerName: player,
		StartedAt:  1_700_000_000_000,
		Questions: []domain.Question{
			{
				Text:    "Pick a color",
				Choices: []domain.Choice{{Value: "Red", IsSelected: true}, {Value: "Blue"}},
			},
		},
	}
}
