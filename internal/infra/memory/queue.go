package memory

import (
	"context"
	"errors"
	"log"

	"daily-quiz-service/internal/domain"
)

// ErrQueueFull is returned by Publish when every slot is taken.
var ErrQueueFull = errors.New("queue full")

// Queue is an in-process trigger queue. It has no redelivery: a message whose handler
// fails is logged and dropped.
type Queue struct {
	ch chan domain.OTPRequestCreated
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan domain.OTPRequestCreated, size)}
}

// Publish never blocks: consumers re-publish retries into the same queue, and a full
// queue must not stall them.
func (q *Queue) Publish(ctx context.Context, msg domain.OTPRequestCreated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- msg:
		return nil
	default:
		log.Printf("queue: full, dropping otp request %s", msg.RequestID)
		return ErrQueueFull
	}
}

// Consume hands messages to handle until ctx is canceled.
func (q *Queue) Consume(ctx context.Context, consumer string, handle func(context.Context, domain.OTPRequestCreated) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-q.ch:
			if err := handle(ctx, msg); err != nil {
				log.Printf("queue: %s dropped otp request %s: %v", consumer, msg.RequestID, err)
			}
		}
	}
}
