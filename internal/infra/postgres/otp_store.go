package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// OTPStore persists OTP request records.
type OTPStore struct {
	pool *pgxpool.Pool
}

func NewOTPStore(pool *pgxpool.Pool) *OTPStore {
	return &OTPStore{pool: pool}
}

func (s *OTPStore) CreateOTPRequest(ctx context.Context, req domain.OTPRequest) (domain.OTPRequest, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO otp_requests (id, mobile_number, code, quiz_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.MobileNumber, req.Code, req.QuizID, req.CreatedAt)
	if err != nil {
		return domain.OTPRequest{}, fmt.Errorf("insert otp request: %w", err)
	}
	return req, nil
}

func (s *OTPStore) GetOTPRequest(ctx context.Context, id string) (domain.OTPRequest, error) {
	var req domain.OTPRequest
	err := s.pool.QueryRow(ctx, `
		SELECT id, mobile_number, code, quiz_id, created_at, sent_at, expire_at
		FROM otp_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.MobileNumber, &req.Code, &req.QuizID, &req.CreatedAt, &req.SentAt, &req.ExpireAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OTPRequest{}, domain.ErrOTPRequestNotFound
	}
	if err != nil {
		return domain.OTPRequest{}, fmt.Errorf("get otp request: %w", err)
	}
	return req, nil
}

// MarkOTPSent stamps delivery metadata once; a record already stamped is left as is.
func (s *OTPStore) MarkOTPSent(ctx context.Context, id string, sentAt, expireAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE otp_requests SET sent_at = $2, expire_at = $3
		WHERE id = $1 AND sent_at IS NULL`, id, sentAt, expireAt)
	if err != nil {
		return fmt.Errorf("mark otp request sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetOTPRequest(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
