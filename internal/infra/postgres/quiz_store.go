package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizStore reads quizzes from Postgres; questions are kept as JSONB.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

// FindQuizInRange returns the latest quiz whose quiz_date lies in [start, end].
func (s *QuizStore) FindQuizInRange(ctx context.Context, start, end time.Time) (domain.Quiz, error) {
	var (
		quiz domain.Quiz
		raw  []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, description, quiz_date, questions
		FROM quizzes
		WHERE quiz_date >= $1 AND quiz_date <= $2
		ORDER BY quiz_date DESC
		LIMIT 1`, start, end).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Date, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("find quiz: %w", err)
	}
	if err := json.Unmarshal(raw, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return quiz, nil
}

// UpsertQuiz writes a quiz; content authoring tools and seeding use it.
func (s *QuizStore) UpsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, title, description, quiz_date, questions)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			quiz_date = EXCLUDED.quiz_date,
			questions = EXCLUDED.questions`,
		quiz.ID, quiz.Title, quiz.Description, quiz.Date, string(questions))
	if err != nil {
		return fmt.Errorf("upsert quiz: %w", err)
	}
	return nil
}
