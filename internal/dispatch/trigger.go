package dispatch

import (
	"context"
	"fmt"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
)

// Publisher puts a trigger message on the dispatch queue.
type Publisher interface {
	Publish(ctx context.Context, msg domain.OTPRequestCreated) error
}

// TriggeredStore wraps an OTP request store so every created record publishes exactly
// one trigger message.
type TriggeredStore struct {
	store app.OTPRequestStore
	pub   Publisher
}

func NewTriggeredStore(store app.OTPRequestStore, pub Publisher) *TriggeredStore {
	return &TriggeredStore{store: store, pub: pub}
}

func (s *TriggeredStore) CreateOTPRequest(ctx context.Context, req domain.OTPRequest) (domain.OTPRequest, error) {
	stored, err := s.store.CreateOTPRequest(ctx, req)
	if err != nil {
		return domain.OTPRequest{}, err
	}
	if err := s.pub.Publish(ctx, domain.OTPRequestCreated{RequestID: stored.ID}); err != nil {
		return domain.OTPRequest{}, fmt.Errorf("trigger otp delivery: %w", err)
	}
	return stored, nil
}
