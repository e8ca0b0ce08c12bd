package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"daily-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// LeadStore persists leads; the response snapshot is stored as JSONB.
type LeadStore struct {
	pool *pgxpool.Pool
}

func NewLeadStore(pool *pgxpool.Pool) *LeadStore {
	return &LeadStore{pool: pool}
}

func (s *LeadStore) CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	responses, err := json.Marshal(lead.Responses)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("marshal responses: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO leads (id, name, mobile, quiz_id, quiz_title, score, total_questions, responses, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)`,
		lead.ID, lead.Name, lead.Mobile, lead.QuizID, lead.QuizTitle,
		lead.Score, lead.TotalQuestions, string(responses), lead.SubmittedAt)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

// CountLeads returns how many leads were captured for quizID.
func (s *LeadStore) CountLeads(ctx context.Context, quizID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE quiz_id = $1`, quizID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}
