package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/infra/memory"
)

func TestQuizHandlerByDate(t *testing.T) {
	day := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)
	resolver := app.NewQuizResolver(memory.NewQuizStore(sampleQuiz(day)), time.UTC, time.Second)
	handler := NewQuizHandler(resolver)

	rec := httptest.NewRecorder()
	handler.HandleByDate(rec, httptest.NewRequest(http.MethodGet, "/quizzes?date=2026-10-17", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body quizView
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "quiz-1" || body.Date != "2026-10-17" || len(body.Questions) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if strings.Contains(rec.Body.String(), "correctAnswer") {
		t.Fatalf("correct answers leaked: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.HandleByDate(rec, httptest.NewRequest(http.MethodGet, "/quizzes?date=2026-10-18", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a day without quiz, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleByDate(rec, httptest.NewRequest(http.MethodGet, "/quizzes?date=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQuizHandlerToday(t *testing.T) {
	resolver := app.NewQuizResolver(memory.NewQuizStore(sampleQuiz(time.Now())), time.UTC, time.Second)
	handler := NewQuizHandler(resolver)

	rec := httptest.NewRecorder()
	handler.HandleToday(rec, httptest.NewRequest(http.MethodGet, "/quizzes/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleToday(rec, httptest.NewRequest(http.MethodPost, "/quizzes/today", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
