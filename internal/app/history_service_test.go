package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestHistoryServiceAppendAsync(t *testing.T) {
	ctx := context.Background()
	service := app.NewHistoryService(memory.NewHistoryRepository(), zaptest.NewLogger(t))
	defer service.Close()

	pending := service.AppendAsync(ctx, colorFruitQuiz())
	select {
	case <-pending.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("append did not finish")
	}
	stored, err := pending.Wait(ctx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	all, err := service.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != stored.ID {
		t.Fatalf("unexpected history %+v", all)
	}
}

func TestHistoryServiceWriteSurvivesCallerCancel(t *testing.T) {
	repo := memory.NewHistoryRepository()
	service := app.NewHistoryService(repo, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	pending := service.AppendAsync(ctx, colorFruitQuiz())
	cancel()
	if _, err := pending.Wait(ctx); !errors.Is(err, context.Canceled) && err != nil {
		t.Fatalf("unexpected wait error: %v", err)
	}
	service.Close()

	all, _ := repo.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected write to complete despite cancel, got %d records", len(all))
	}
}

func TestHistoryServiceEmptyIsNotAnError(t *testing.T) {
	service := app.NewHistoryService(memory.NewHistoryRepository(), zaptest.NewLogger(t))
	defer service.Close()

	all, err := service.ListAll(context.Background())
	if err != nil {
		t.Fatalf("empty history must not fail: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty list, got %#v", all)
	}
}

func TestHistoryServiceSurfacesStorageErrors(t *testing.T) {
	ctx := context.Background()
	service := app.NewHistoryService(failingRepository{}, zaptest.NewLogger(t))
	defer service.Close()

	if _, err := service.ListAll(ctx); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on list, got %v", err)
	}
	_, err := service.Append(ctx, colorFruitQuiz())
	if !errors.Is(err, domain.ErrStorageUnavailable) || !errors.Is(err, errDiskGone) {
		t.Fatalf("expected wrapped storage error on append, got %v", err)
	}
}

func TestHistoryServiceRejectsAfterClose(t *testing.T) {
	service := app.NewHistoryService(memory.NewHistoryRepository(), zaptest.NewLogger(t))
	service.Close()
	service.Close()

	_, err := service.Append(context.Background(), colorFruitQuiz())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable after close, got %v", err)
	}
}

func TestHistoryServiceCloseDrainsQueue(t *testing.T) {
	repo := memory.NewHistoryRepository()
	service := app.NewHistoryService(repo, zaptest.NewLogger(t))

	pendings := make([]*app.PendingAppend, 0, 10)
	for i := 0; i < 10; i++ {
		pendings = append(pendings, service.AppendAsync(context.Background(), colorFruitQuiz()))
	}
	service.Close()

	for _, p := range pendings {
		select {
		case <-p.Done():
		default:
			t.Fatalf("queued write not finished after close")
		}
	}
	all, _ := repo.ListAll(context.Background())
	if len(all) != 10 {
		t.Fatalf("expected 10 records, got %d", len(all))
	}
}

var errDiskGone = errors.New("disk gone")

type failingRepository struct{}

func (failingRepository) Append(context.Context, domain.Quiz) (domain.Quiz, error) {
	return domain.Quiz{}, errDiskGone
}

func (failingRepository) ListAll(context.Context) ([]domain.Quiz, error) {
	return nil, errDiskGone
}
