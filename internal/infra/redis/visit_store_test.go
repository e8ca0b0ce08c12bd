package redis

import (
	"fmt"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestVisitStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewVisitStore(newClient(mr), time.Minute)
	otp := app.NewOTPService(memory.NewOTPStore(), 0, 0)

	store.Save(app.NewVisit("v1", sampleQuiz(), otp.NewChallenge()))
	if !mr.Exists("quiz:visit:v1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("v1"); !ok {
		t.Fatalf("expected live visit")
	}

	store.Delete("v1")
	if mr.Exists("quiz:visit:v1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestVisitStoreDropsExpiredVisits(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewVisitStore(newClient(mr), time.Minute)
	otp := app.NewOTPService(memory.NewOTPStore(), 0, 0)
	store.Save(app.NewVisit("v1", sampleQuiz(), otp.NewChallenge()))

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get("v1"); ok {
		t.Fatalf("expected visit with expired marker to be dropped")
	}
}

func TestVisitStoreSweepsAbandonedVisits(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store := NewVisitStore(newClient(mr), time.Minute)
	store.now = func() time.Time { return now }
	otp := app.NewOTPService(memory.NewOTPStore(), 0, 0)

	for i := 0; i < 1000; i++ {
		store.Save(app.NewVisit(fmt.Sprintf("v%d", i), sampleQuiz(), otp.NewChallenge()))
	}
	if got := localVisits(store); got != 1000 {
		t.Fatalf("expected 1000 live visits, got %d", got)
	}

	mr.FastForward(time.Hour)
	now = now.Add(time.Hour)
	store.Save(app.NewVisit("fresh", sampleQuiz(), otp.NewChallenge()))

	if got := localVisits(store); got != 1 {
		t.Fatalf("expected only the fresh visit in process, got %d", got)
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Fatalf("expected fresh visit to survive the sweep")
	}
}

func localVisits(s *VisitStore) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}
