package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestStreamQueueDeliversAndAcks(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	q := NewStreamQueue(client, OTPStream, DispatcherGroup)
	q.block = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := q.EnsureGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}
	if err := q.EnsureGroup(ctx); err != nil {
		t.Fatalf("ensure group twice: %v", err)
	}
	if err := q.Publish(ctx, domain.OTPRequestCreated{RequestID: "r1", Attempt: 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := make(chan domain.OTPRequestCreated, 1)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, "w1", func(_ context.Context, msg domain.OTPRequestCreated) error {
			got <- msg
			return nil
		})
	}()

	select {
	case msg := <-got:
		if msg.RequestID != "r1" || msg.Attempt != 2 {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("message not delivered")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("consume: %v", err)
	}

	pending, err := client.XPending(context.Background(), OTPStream, DispatcherGroup).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 0 {
		t.Fatalf("expected entry acked, pending=%d", pending.Count)
	}
}

func TestStreamQueueLeavesFailedEntriesPending(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	q := NewStreamQueue(client, OTPStream, DispatcherGroup)
	q.block = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := q.Publish(ctx, domain.OTPRequestCreated{RequestID: "r1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// group created after the entry: reading from "0" must still see it
	if err := q.EnsureGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}

	handled := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, "w1", func(context.Context, domain.OTPRequestCreated) error {
			handled <- struct{}{}
			return errors.New("gateway down")
		})
	}()

	select {
	case <-handled:
	case <-time.After(3 * time.Second):
		t.Fatalf("message not delivered")
	}
	cancel()
	<-done

	pending, err := client.XPending(context.Background(), OTPStream, DispatcherGroup).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 1 {
		t.Fatalf("expected failed entry pending, pending=%d", pending.Count)
	}
}

func TestStreamQueueReplaysOwnPendingEntriesOnRestart(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	q := NewStreamQueue(client, OTPStream, DispatcherGroup)
	q.block = 50 * time.Millisecond
	notBefore := time.UnixMilli(time.Now().Add(time.Minute).UnixMilli())
	if err := q.Publish(context.Background(), domain.OTPRequestCreated{RequestID: "r1", Attempt: 1, NotBefore: notBefore}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	failOnce(t, q, "w1")

	got := make(chan domain.OTPRequestCreated, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = q.Consume(ctx, "w1", func(_ context.Context, msg domain.OTPRequestCreated) error {
			got <- msg
			return nil
		})
	}()

	select {
	case msg := <-got:
		if msg.RequestID != "r1" || msg.Attempt != 1 || !msg.NotBefore.Equal(notBefore) {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("pending entry not replayed after restart")
	}
	waitForNoPending(t, client)
}

func TestStreamQueueClaimsIdleEntriesOfAnotherConsumer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	q := NewStreamQueue(client, OTPStream, DispatcherGroup)
	q.block = 50 * time.Millisecond
	if err := q.Publish(context.Background(), domain.OTPRequestCreated{RequestID: "r1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	failOnce(t, q, "gone-1")

	other := NewStreamQueue(client, OTPStream, DispatcherGroup).WithClaim(0, 0)
	other.block = 50 * time.Millisecond
	got := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = other.Consume(ctx, "w2", func(_ context.Context, msg domain.OTPRequestCreated) error {
			got <- msg.RequestID
			return nil
		})
	}()

	select {
	case id := <-got:
		if id != "r1" {
			t.Fatalf("unexpected message %s", id)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("idle entry was never claimed")
	}
	waitForNoPending(t, client)
}

// failOnce runs consumer until its handler has failed one delivery, then stops it.
func failOnce(t *testing.T, q *StreamQueue, consumer string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, consumer, func(context.Context, domain.OTPRequestCreated) error {
			select {
			case handled <- struct{}{}:
			default:
			}
			return errors.New("gateway down")
		})
	}()
	select {
	case <-handled:
	case <-time.After(3 * time.Second):
		t.Fatalf("message not delivered to %s", consumer)
	}
	cancel()
	<-done
}

func waitForNoPending(t *testing.T, client *goredis.Client) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		pending, err := client.XPending(context.Background(), OTPStream, DispatcherGroup).Result()
		if err != nil {
			t.Fatalf("xpending: %v", err)
		}
		if pending.Count == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("entries still pending")
}
