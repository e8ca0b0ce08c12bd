package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
)

func TestVisitFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	service, leads := newTestService()

	visit, err := service.Start(ctx, time.Time{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.RequestOTP(ctx, visit.ID(), "9876543210"); !errors.Is(err, domain.ErrSessionNotSubmitted) {
		t.Fatalf("expected otp gated on submit, got %v", err)
	}

	if _, err := service.SelectOption(ctx, visit.ID(), 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := service.GoTo(ctx, visit.ID(), 1); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if _, err := service.SelectOption(ctx, visit.ID(), 2); err != nil {
		t.Fatalf("select: %v", err)
	}
	score, err := service.Submit(ctx, visit.ID())
	if err != nil || score != 2 {
		t.Fatalf("submit = %d, %v", score, err)
	}

	if _, err := service.SubmitLead(ctx, visit.ID(), "Asha"); !errors.Is(err, domain.ErrOTPNotVerified) {
		t.Fatalf("expected lead gated on otp, got %v", err)
	}

	req, err := service.RequestOTP(ctx, visit.ID(), "9876543210")
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if ok, err := service.VerifyOTP(ctx, visit.ID(), "000000"); err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
	if ok, err := service.VerifyOTP(ctx, visit.ID(), req.Code); err != nil || !ok {
		t.Fatalf("expected verified, got %v %v", ok, err)
	}

	lead, err := service.SubmitLead(ctx, visit.ID(), "Asha")
	if err != nil {
		t.Fatalf("submit lead: %v", err)
	}
	if lead.Mobile != "9876543210" || lead.Score != 2 {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if _, err := service.SubmitLead(ctx, visit.ID(), "Asha"); !errors.Is(err, domain.ErrLeadAlreadySubmitted) {
		t.Fatalf("expected one lead per visit, got %v", err)
	}
	if len(leads.Leads()) != 1 {
		t.Fatalf("expected exactly one lead, got %d", len(leads.Leads()))
	}

	service.Leave(ctx, visit.ID())
	if _, err := service.Resume(ctx, visit.ID()); !errors.Is(err, domain.ErrVisitNotFound) {
		t.Fatalf("expected finished visit dropped, got %v", err)
	}
}

func TestStartWithoutQuiz(t *testing.T) {
	service, _ := newTestService()
	if _, err := service.Start(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected no quiz, got %v", err)
	}
}

func TestConcurrentRequestsAreRejected(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	store := &gatedOTPStore{OTPStore: memory.NewOTPStore(), entered: make(chan struct{}), gate: gate}
	service := newServiceWithOTPStore(store)

	visit, err := service.Start(ctx, time.Time{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAll(t, service, visit.ID())

	errs := make(chan error, 1)
	go func() {
		_, err := service.RequestOTP(ctx, visit.ID(), "9876543210")
		errs <- err
	}()
	<-store.entered

	if _, err := service.RequestOTP(ctx, visit.ID(), "9876543210"); !errors.Is(err, domain.ErrOperationInProgress) {
		t.Fatalf("expected re-entrant request rejected, got %v", err)
	}
	if _, err := service.VerifyOTP(ctx, visit.ID(), "123456"); !errors.Is(err, domain.ErrOperationInProgress) {
		t.Fatalf("expected verify rejected while sending, got %v", err)
	}
	close(gate)
	if err := <-errs; err != nil {
		t.Fatalf("first request: %v", err)
	}
}

func newTestService() (*app.QuizService, *memory.LeadStore) {
	leads := memory.NewLeadStore()
	return newService(memory.NewOTPStore(), leads), leads
}

func newServiceWithOTPStore(store app.OTPRequestStore) *app.QuizService {
	return newService(store, memory.NewLeadStore())
}

func newService(otpStore app.OTPRequestStore, leads *memory.LeadStore) *app.QuizService {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	quiz := twoQuestionQuiz()
	quiz.Date = now.Add(-time.Hour)
	resolver := app.NewQuizResolverWithClock(memory.NewQuizStore(quiz), time.UTC, time.Second, func() time.Time { return now })
	return app.NewQuizService(
		memory.NewVisitStore(time.Hour),
		resolver,
		app.NewOTPService(otpStore, 5*time.Minute, 5),
		app.NewLeadService(leads),
	)
}

func answerAll(t *testing.T, service *app.QuizService, visitID string) {
	t.Helper()
	ctx := context.Background()
	_, _ = service.SelectOption(ctx, visitID, 1)
	_, _ = service.GoTo(ctx, visitID, 1)
	_, _ = service.SelectOption(ctx, visitID, 2)
	if _, err := service.Submit(ctx, visitID); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

type gatedOTPStore struct {
	*memory.OTPStore
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedOTPStore) CreateOTPRequest(ctx context.Context, req domain.OTPRequest) (domain.OTPRequest, error) {
	close(s.entered)
	<-s.gate
	return s.OTPStore.CreateOTPRequest(ctx, req)
}
