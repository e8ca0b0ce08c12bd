package memory

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
)

// OTPStore keeps OTP request records in memory.
type OTPStore struct {
	mu       sync.RWMutex
	requests map[string]domain.OTPRequest
}

func NewOTPStore() *OTPStore {
	return &OTPStore{requests: make(map[string]domain.OTPRequest)}
}

func (s *OTPStore) CreateOTPRequest(_ context.Context, req domain.OTPRequest) (domain.OTPRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return req, nil
}

func (s *OTPStore) GetOTPRequest(_ context.Context, id string) (domain.OTPRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return domain.OTPRequest{}, domain.ErrOTPRequestNotFound
	}
	return req, nil
}

// MarkOTPSent stamps delivery metadata once; later calls leave the record untouched.
func (s *OTPStore) MarkOTPSent(_ context.Context, id string, sentAt, expireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return domain.ErrOTPRequestNotFound
	}
	if req.SentAt != nil {
		return nil
	}
	req.SentAt = &sentAt
	req.ExpireAt = &expireAt
	s.requests[id] = req
	return nil
}

// LeadStore keeps leads in insertion order.
type LeadStore struct {
	mu    sync.RWMutex
	leads []domain.Lead
}

func NewLeadStore() *LeadStore {
	return &LeadStore{}
}

func (s *LeadStore) CreateLead(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return lead, nil
}

// Leads returns a copy of stored leads.
func (s *LeadStore) Leads() []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}
