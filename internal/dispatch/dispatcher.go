// Package dispatch delivers OTP codes by SMS in response to OTP request records being created.
//
// The store write and the delivery are decoupled by a queue: TriggeredStore publishes one
// message per created record and Worker hands each message to Dispatcher.Handle. A
// Dispatcher keeps no state between messages, so any number of workers can run.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"daily-quiz-service/internal/domain"
)

// RecordStore reads OTP requests and appends delivery metadata.
type RecordStore interface {
	GetOTPRequest(ctx context.Context, id string) (domain.OTPRequest, error)
	MarkOTPSent(ctx context.Context, id string, sentAt, expireAt time.Time) error
}

// SMSSender is the gateway. A nil error means the gateway accepted the message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Dispatcher sends one SMS per OTP request and stamps the record.
type Dispatcher struct {
	records  RecordStore
	sender   SMSSender
	validity time.Duration
	now      func() time.Time
}

// NewDispatcher builds a dispatcher. A nil sender means gateway credentials are missing:
// every message is logged and skipped.
func NewDispatcher(records RecordStore, sender SMSSender, validity time.Duration) *Dispatcher {
	return &Dispatcher{records: records, sender: sender, validity: validity, now: time.Now}
}

// WithClock swaps the time source used for sentAt.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// FormatMessage renders the SMS body for code.
func FormatMessage(code string, validity time.Duration) string {
	return fmt.Sprintf("%s is your OTP to unlock your Daily Quiz results. It is valid for %d minutes. Do not share it with anyone.",
		code, int(validity.Round(time.Minute)/time.Minute))
}

// Handle delivers the code of one OTP request. Gateway rejections are returned so the
// queue's retry policy applies; records already marked sent are skipped.
func (d *Dispatcher) Handle(ctx context.Context, msg domain.OTPRequestCreated) error {
	if d.sender == nil {
		log.Printf("dispatch: %v, skipping otp request %s", domain.ErrSMSNotConfigured, msg.RequestID)
		return nil
	}

	req, err := d.records.GetOTPRequest(ctx, msg.RequestID)
	if err != nil {
		if errors.Is(err, domain.ErrOTPRequestNotFound) {
			log.Printf("dispatch: otp request %s not found", msg.RequestID)
		}
		return fmt.Errorf("load otp request %s: %w", msg.RequestID, err)
	}
	if req.SentAt != nil {
		return nil
	}

	if err := d.sender.SendSMS(ctx, req.MobileNumber, FormatMessage(req.Code, d.validity)); err != nil {
		log.Printf("dispatch: sms for otp request %s failed: %v", req.ID, err)
		return fmt.Errorf("send otp sms: %w", err)
	}

	sentAt := d.now().UTC()
	expireAt := req.CreatedAt.Add(d.validity)
	if err := d.records.MarkOTPSent(ctx, req.ID, sentAt, expireAt); err != nil {
		// the SMS is out; a retry finds SentAt unset and sends again
		return fmt.Errorf("mark otp request %s sent: %w", req.ID, err)
	}
	log.Printf("dispatch: otp request %s sent", req.ID)
	return nil
}
