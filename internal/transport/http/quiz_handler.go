package http

import (
	"net/http"
	"strings"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
)

// QuizHandler serves read-only quiz lookups by calendar day.
type QuizHandler struct {
	quizzes *app.QuizResolver
}

func NewQuizHandler(quizzes *app.QuizResolver) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// HandleToday serves GET /quizzes/today.
func (h *QuizHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	quiz, ok := h.quizzes.Today(r.Context())
	h.respond(w, quiz, ok)
}

// HandleByDate serves GET /quizzes?date=YYYY-MM-DD; a missing date means today.
func (h *QuizHandler) HandleByDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	day, err := parseDay(r.URL.Query().Get("date"), h.quizzes.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	if day.IsZero() {
		quiz, ok := h.quizzes.Today(r.Context())
		h.respond(w, quiz, ok)
		return
	}
	quiz, ok := h.quizzes.Resolve(r.Context(), day)
	h.respond(w, quiz, ok)
}

func (h *QuizHandler) respond(w http.ResponseWriter, quiz domain.Quiz, ok bool) {
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no quiz available"})
		return
	}
	writeJSON(w, http.StatusOK, toQuizView(quiz, h.quizzes.Location()))
}

// parseDay returns the zero time for an empty value.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}
