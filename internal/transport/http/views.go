package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
)

// Correct answers are never serialized; scoring happens server-side.

type questionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type quizView struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	Questions   []questionView `json:"questions"`
}

type currentQuestion struct {
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Question questionView `json:"question"`
	Selected *int         `json:"selected,omitempty"`
	Correct  *bool        `json:"correct,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toQuizView(q domain.Quiz, loc *time.Location) quizView {
	questions := make([]questionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = toQuestionView(question)
	}
	return quizView{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Date:        q.Date.In(loc).Format(time.DateOnly),
		Questions:   questions,
	}
}

func toQuestionView(q domain.Question) questionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return questionView{Text: q.Text, Options: options}
}

func toCurrentQuestion(v app.QuestionView) currentQuestion {
	cur := currentQuestion{Index: v.Index, Total: v.Total, Question: toQuestionView(v.Question)}
	if v.Answered {
		selected, correct := v.Selected, v.Correct
		cur.Selected = &selected
		cur.Correct = &correct
	}
	return cur
}

// statusMessage is the inline text shown next to the action that failed.
func statusMessage(action string, err error) string {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return "No quiz is available for this day."
	case errors.Is(err, domain.ErrVisitNotFound):
		return "This quiz session has expired. Please reload."
	case errors.Is(err, domain.ErrInvalidMobile):
		return "Enter a valid 10-digit mobile number."
	case errors.Is(err, domain.ErrNameRequired):
		return "Please enter your name."
	case errors.Is(err, domain.ErrIncompleteResponses):
		return "Answer all questions before submitting."
	case errors.Is(err, domain.ErrEmptyQuiz):
		return "This quiz has no questions."
	case errors.Is(err, domain.ErrSessionSubmitted):
		return "Your answers are already submitted."
	case errors.Is(err, domain.ErrSessionNotSubmitted):
		return "Submit the quiz first."
	case errors.Is(err, domain.ErrOTPNotVerified):
		return "Verify your mobile number first."
	case errors.Is(err, domain.ErrLeadAlreadySubmitted):
		return "Your details are already saved."
	case errors.Is(err, domain.ErrOperationInProgress):
		return "Please wait, your last request is still in progress."
	case errors.Is(err, domain.ErrQuestionOutOfRange), errors.Is(err, domain.ErrOptionOutOfRange):
		return err.Error()
	}
	switch action {
	case actionRequestOTP:
		return "Could not send OTP, please try again."
	case actionSubmitLead:
		return "Could not save your details, please try again."
	default:
		return "Something went wrong, please try again."
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
