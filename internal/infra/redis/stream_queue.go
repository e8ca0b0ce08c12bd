package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// OTPStream carries one entry per created OTP request.
	OTPStream = "otp:requests"
	// DispatcherGroup is the consumer group shared by all dispatcher workers.
	DispatcherGroup = "dispatcher"
)

// StreamQueue is the OTP trigger queue on a Redis Stream:
//
//	XADD otp:requests * requestId {id} attempt {n} [notBefore {unix ms}]
//
// Consumers read through a consumer group and XACK after a successful handle, so an
// entry whose handler failed stays pending. A consumer first replays its own pending
// entries, then periodically claims entries other consumers left idle for claimIdle.
type StreamQueue struct {
	client     *redis.Client
	stream     string
	group      string
	block      time.Duration
	claimIdle  time.Duration
	claimEvery time.Duration
}

func NewStreamQueue(client *redis.Client, stream, group string) *StreamQueue {
	return &StreamQueue{
		client:     client,
		stream:     stream,
		group:      group,
		block:      time.Second,
		claimIdle:  time.Minute,
		claimEvery: 30 * time.Second,
	}
}

// WithClaim sets how long an entry must sit unacknowledged before another consumer
// takes it over, and how often consumers look for such entries.
func (q *StreamQueue) WithClaim(idle, every time.Duration) *StreamQueue {
	q.claimIdle = idle
	q.claimEvery = every
	return q
}

// EnsureGroup creates the stream and consumer group if they do not exist yet.
func (q *StreamQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func (q *StreamQueue) Publish(ctx context.Context, msg domain.OTPRequestCreated) error {
	values := map[string]interface{}{
		"requestId": msg.RequestID,
		"attempt":   msg.Attempt,
	}
	if !msg.NotBefore.IsZero() {
		values["notBefore"] = msg.NotBefore.UnixMilli()
	}
	return q.client.XAdd(ctx, &redis.XAddArgs{Stream: q.stream, Values: values}).Err()
}

// Consume reads entries as consumer until ctx is canceled.
func (q *StreamQueue) Consume(ctx context.Context, consumer string, handle func(context.Context, domain.OTPRequestCreated) error) error {
	if err := q.EnsureGroup(ctx); err != nil {
		return err
	}
	if err := q.replayPending(ctx, consumer, handle); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	var lastClaim time.Time
	for {
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(lastClaim) >= q.claimEvery {
			if err := q.claimIdleEntries(ctx, consumer, handle); err != nil && ctx.Err() == nil {
				log.Printf("queue: %s claim failed: %v", consumer, err)
			}
			lastClaim = time.Now()
		}

		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    10,
			Block:    q.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", q.stream, err)
		}
		for _, stream := range streams {
			q.process(ctx, consumer, stream.Messages, handle)
		}
	}
}

// replayPending hands consumer its own unacknowledged entries once, oldest first.
func (q *StreamQueue) replayPending(ctx context.Context, consumer string, handle func(context.Context, domain.OTPRequestCreated) error) error {
	start := "0"
	for {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, start},
			Count:    10,
			Block:    -1,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("replay %s: %w", q.stream, err)
		}
		var messages []redis.XMessage
		for _, stream := range streams {
			messages = append(messages, stream.Messages...)
		}
		if len(messages) == 0 {
			return nil
		}
		q.process(ctx, consumer, messages, handle)
		start = messages[len(messages)-1].ID
	}
}

// claimIdleEntries takes over entries that sat unacknowledged for claimIdle.
func (q *StreamQueue) claimIdleEntries(ctx context.Context, consumer string, handle func(context.Context, domain.OTPRequestCreated) error) error {
	start := "0-0"
	for {
		messages, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.stream,
			Group:    q.group,
			Consumer: consumer,
			MinIdle:  q.claimIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			log.Printf("queue: %s claimed %d idle entries", consumer, len(messages))
			q.process(ctx, consumer, messages, handle)
		}
		if next == "" || next == "0-0" {
			return nil
		}
		start = next
	}
}

func (q *StreamQueue) process(ctx context.Context, consumer string, messages []redis.XMessage, handle func(context.Context, domain.OTPRequestCreated) error) {
	for _, entry := range messages {
		if ctx.Err() != nil {
			return
		}
		msg, ok := decodeEntry(entry)
		if !ok {
			log.Printf("queue: discarding malformed entry %s", entry.ID)
			_ = q.client.XAck(ctx, q.stream, q.group, entry.ID).Err()
			continue
		}
		if err := handle(ctx, msg); err != nil {
			log.Printf("queue: %s left otp request %s pending: %v", consumer, msg.RequestID, err)
			continue
		}
		if err := q.client.XAck(ctx, q.stream, q.group, entry.ID).Err(); err != nil {
			log.Printf("queue: ack %s failed: %v", entry.ID, err)
		}
	}
}

func decodeEntry(entry redis.XMessage) (domain.OTPRequestCreated, bool) {
	id, _ := entry.Values["requestId"].(string)
	if id == "" {
		return domain.OTPRequestCreated{}, false
	}
	msg := domain.OTPRequestCreated{RequestID: id}
	if raw, ok := entry.Values["attempt"].(string); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			msg.Attempt = n
		}
	}
	if raw, ok := entry.Values["notBefore"].(string); ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			msg.NotBefore = time.UnixMilli(ms)
		}
	}
	return msg, true
}
