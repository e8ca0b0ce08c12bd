package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// LeadStore persists verified leads.
type LeadStore interface {
	CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error)
}

// LeadService writes a lead once the visitor's phone number is verified.
type LeadService struct {
	store LeadStore
	now   func() time.Time
}

func NewLeadService(store LeadStore) *LeadService {
	return &LeadService{store: store, now: time.Now}
}

// WithClock swaps the time source used for SubmittedAt.
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}

// SubmitLead validates the identity, checks the challenge was verified for the same
// mobile, and stores a snapshot of the submitted session. Every successful call
// creates a new record.
func (s *LeadService) SubmitLead(ctx context.Context, name, mobile string, otp *OTPChallenge, session *QuizSession) (domain.Lead, error) {
	name = strings.TrimSpace(name)
	mobile = strings.TrimSpace(mobile)
	if name == "" {
		return domain.Lead{}, domain.ErrNameRequired
	}
	if !ValidMobile(mobile) {
		return domain.Lead{}, domain.ErrInvalidMobile
	}
	verified, ok := otp.Verified()
	if !ok {
		return domain.Lead{}, domain.ErrOTPNotVerified
	}
	if verified != mobile {
		return domain.Lead{}, domain.ErrMobileMismatch
	}
	outcome, err := session.Outcome()
	if err != nil {
		return domain.Lead{}, err
	}

	lead := domain.Lead{
		ID:             uuid.NewString(),
		Name:           name,
		Mobile:         mobile,
		QuizID:         outcome.QuizID,
		QuizTitle:      outcome.QuizTitle,
		Score:          outcome.Score,
		TotalQuestions: outcome.TotalQuestions,
		Responses:      outcome.Responses,
		SubmittedAt:    s.now().UTC(),
	}
	stored, err := s.store.CreateLead(ctx, lead)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return stored, nil
}
