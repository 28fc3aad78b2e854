package bundb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"trivia-quiz/internal/domain"
)

// quizRecord is the persisted layout of a quiz: two scalar columns for querying
// and the questions, selections included, as a JSON blob.
type quizRecord struct {
	bun.BaseModel `bun:"table:quiz,alias:q"`

	ID          int64  `bun:"id,pk,autoincrement"`
	PlayerName  string `bun:"playerName,notnull"`
	TimeInMills int64  `bun:"timeInMills,notnull"`
	Questions   string `bun:"questions,notnull"`
}

// HistoryRepository stores quizzes through bun. It works on any dialect whose
// migrations created the quiz table (SQLite, Postgres).
type HistoryRepository struct {
	db *bun.DB
}

func NewHistoryRepository(db *bun.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts quiz, or replaces the record with the same id when quiz carries one.
func (r *HistoryRepository) Append(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	record, err := toRecord(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	explicitID := record.ID != 0

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(record).
			On("CONFLICT (id) DO UPDATE").
			Set(`"playerName" = EXCLUDED."playerName"`).
			Set(`"timeInMills" = EXCLUDED."timeInMills"`).
			Set(`questions = EXCLUDED.questions`).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if record.ID == 0 {
			// dialects without RETURNING report the generated rowid instead
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("read quiz id: %w", err)
			}
			record.ID = id
		}
		if explicitID && r.db.Dialect().Name() == dialect.PG {
			return syncSequence(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	stored := quiz.Clone()
	stored.ID = record.ID
	return stored, nil
}

// ListAll returns every stored quiz ascending by id.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]domain.Quiz, error) {
	var records []quizRecord
	if err := r.db.NewSelect().Model(&records).OrderExpr("q.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: select quizzes: %w", domain.ErrStorageUnavailable, err)
	}

	quizzes := make([]domain.Quiz, 0, len(records))
	for _, record := range records {
		quiz, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// syncSequence moves the Postgres id sequence past explicitly written ids so
// later generated ids stay unused.
func syncSequence(ctx context.Context, tx bun.Tx) error {
	_, err := tx.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('quiz', 'id'), (SELECT MAX(id) FROM quiz))`)
	if err != nil {
		return fmt.Errorf("sync quiz id sequence: %w", err)
	}
	return nil
}

func toRecord(quiz domain.Quiz) (*quizRecord, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return nil, fmt.Errorf("%w: questions of quiz %d: %v", domain.ErrSerializationFailed, quiz.ID, err)
	}
	return &quizRecord{
		ID:          quiz.ID,
		PlayerName:  quiz.PlayerName,
		TimeInMills: quiz.StartedAt,
		Questions:   string(questions),
	}, nil
}

func fromRecord(record quizRecord) (domain.Quiz, error) {
	var questions []domain.Question
	if err := json.Unmarshal([]byte(record.Questions), &questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: questions of quiz %d: %v", domain.ErrDeserialization, record.ID, err)
	}
	return domain.Quiz{
		ID:         record.ID,
		PlayerName: record.PlayerName,
		StartedAt:  record.TimeInMills,
		Questions:  questions,
	}, nil
}
