package memory

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
)

// QuizStore is a document store for quizzes backed by a slice (useful for tests/demos).
type QuizStore struct {
	mu      sync.RWMutex
	quizzes []domain.Quiz
}

func NewQuizStore(quizzes ...domain.Quiz) *QuizStore {
	s := &QuizStore{}
	for _, q := range quizzes {
		s.Put(q)
	}
	return s
}

// Put inserts q or replaces the quiz with the same ID.
func (s *QuizStore) Put(q domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.quizzes {
		if s.quizzes[i].ID == q.ID {
			s.quizzes[i] = q
			return
		}
	}
	s.quizzes = append(s.quizzes, q)
}

// FindQuizInRange returns the latest-dated quiz whose date lies in [start, end].
func (s *QuizStore) FindQuizInRange(ctx context.Context, start, end time.Time) (domain.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := false
	var best domain.Quiz
	for _, q := range s.quizzes {
		if q.Date.Before(start) || q.Date.After(end) {
			continue
		}
		if !found || q.Date.After(best.Date) {
			best = q
			found = true
		}
	}
	if !found {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return best, nil
}
