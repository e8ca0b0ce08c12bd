package dispatch

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Consumer feeds trigger messages to handle. A handler error leaves the message
// unacknowledged where the queue supports it.
type Consumer interface {
	Consume(ctx context.Context, consumer string, handle func(context.Context, domain.OTPRequestCreated) error) error
}

// Worker runs dispatcher consumers and applies the retry policy: a failed message is
// re-published at once with Attempt+1 and a NotBefore of backoff*(Attempt+1), until
// maxRetries, then dropped. A message that is not due yet waits in its own goroutine,
// so one failing number never holds up the messages queued behind it.
type Worker struct {
	dispatcher *Dispatcher
	consumer   Consumer
	retry      Publisher
	maxRetries int
	workers    int
	backoff    time.Duration
	now        func() time.Time

	waiting sync.WaitGroup
}

func NewWorker(d *Dispatcher, consumer Consumer, retry Publisher, maxRetries, workers int) *Worker {
	if workers <= 0 {
		workers = 1
	}
	return &Worker{
		dispatcher: d,
		consumer:   consumer,
		retry:      retry,
		maxRetries: maxRetries,
		workers:    workers,
		backoff:    time.Second,
		now:        time.Now,
	}
}

// WithBackoff sets the base delay before a failed message is tried again.
func (w *Worker) WithBackoff(d time.Duration) *Worker {
	w.backoff = d
	return w
}

// Run blocks until ctx is canceled or a consumer fails. Consumer names are stable per
// host so a restarted process picks up its own pending entries.
func (w *Worker) Run(ctx context.Context) error {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "dispatcher"
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		name := fmt.Sprintf("%s-%d", host, i+1)
		g.Go(func() error {
			return w.consumer.Consume(ctx, name, w.handle)
		})
	}
	log.Printf("dispatch: %d worker(s) consuming otp requests", w.workers)
	err = g.Wait()
	w.waiting.Wait()
	return err
}

func (w *Worker) handle(ctx context.Context, msg domain.OTPRequestCreated) error {
	if wait := msg.NotBefore.Sub(w.now()); wait > 0 {
		w.waiting.Add(1)
		go w.later(ctx, msg, wait)
		return nil
	}
	return w.attempt(ctx, msg)
}

func (w *Worker) attempt(ctx context.Context, msg domain.OTPRequestCreated) error {
	err := w.dispatcher.Handle(ctx, msg)
	if err == nil {
		return nil
	}
	if w.retry == nil || msg.Attempt >= w.maxRetries {
		log.Printf("dispatch: giving up on otp request %s after %d attempt(s): %v", msg.RequestID, msg.Attempt+1, err)
		return nil
	}

	next := msg
	next.Attempt++
	next.NotBefore = w.now().Add(w.backoff * time.Duration(next.Attempt))
	if err := w.retry.Publish(ctx, next); err != nil {
		return fmt.Errorf("requeue otp request %s: %w", msg.RequestID, err)
	}
	return nil
}

// later runs msg once it is due. On shutdown the message goes back on the queue
// unchanged so the next consumer honors the same NotBefore.
func (w *Worker) later(ctx context.Context, msg domain.OTPRequestCreated, wait time.Duration) {
	defer w.waiting.Done()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		if err := w.attempt(ctx, msg); err != nil {
			log.Printf("dispatch: otp request %s lost: %v", msg.RequestID, err)
		}
	case <-ctx.Done():
		if w.retry == nil {
			return
		}
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.retry.Publish(pctx, msg); err != nil {
			log.Printf("dispatch: otp request %s lost on shutdown: %v", msg.RequestID, err)
		}
	}
}
