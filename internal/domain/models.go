package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// AnswerForm records how a question's correct answer was stored by content authors.
type AnswerForm int

const (
	// AnswerMissing means no correct answer was stored.
	AnswerMissing AnswerForm = iota
	// AnswerNumber is a literal JSON number.
	AnswerNumber
	// AnswerString is a JSON string; it may still hold a numeric index.
	AnswerString
)

// CorrectAnswer keeps the stored correct-answer value in its original form.
// Interpretation (index vs text) belongs to the answer package.
type CorrectAnswer struct {
	Form AnswerForm
	Raw  string
}

// IndexAnswer builds a correct answer stored as a number.
func IndexAnswer(i int) CorrectAnswer {
	return CorrectAnswer{Form: AnswerNumber, Raw: strconv.Itoa(i)}
}

// TextAnswer builds a correct answer stored as a string.
func TextAnswer(s string) CorrectAnswer {
	return CorrectAnswer{Form: AnswerString, Raw: s}
}

func (a CorrectAnswer) MarshalJSON() ([]byte, error) {
	switch a.Form {
	case AnswerNumber:
		return []byte(a.Raw), nil
	case AnswerString:
		return json.Marshal(a.Raw)
	default:
		return []byte("null"), nil
	}
}

func (a *CorrectAnswer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = CorrectAnswer{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*a = CorrectAnswer{Form: AnswerNumber, Raw: string(data)}
	default:
		// booleans, objects and arrays cannot name an answer
		*a = CorrectAnswer{}
	}
	return nil
}

// Question models an MCQ question. Its position in Quiz.Questions is its identity.
type Question struct {
	Text          string        `json:"text"`
	Options       []string      `json:"options"`
	CorrectAnswer CorrectAnswer `json:"correctAnswer"`
}

// Quiz is a dated set of questions. Only the calendar day of Date matters.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	Questions   []Question `json:"questions"`
}

// OTPRequest is written once by the client flow and completed once by the dispatcher.
type OTPRequest struct {
	ID           string     `json:"id"`
	MobileNumber string     `json:"mobileNumber"`
	Code         string     `json:"code"`
	QuizID       *string    `json:"quizId"`
	CreatedAt    time.Time  `json:"createdAt"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
	ExpireAt     *time.Time `json:"expireAt,omitempty"`
}

// OTPRequestCreated is the trigger message published after an OTPRequest is stored.
// Retries carry NotBefore; the zero value means deliver now.
type OTPRequestCreated struct {
	RequestID string
	Attempt   int
	NotBefore time.Time
}

// LeadResponse is a per-question snapshot copied into a Lead.
type LeadResponse struct {
	QuestionNumber      int    `json:"questionNumber"`
	SelectedOptionIndex int    `json:"selectedOptionIndex"`
	SelectedOptionText  string `json:"selectedOptionText"`
	CorrectAnswerText   string `json:"correctAnswerText,omitempty"`
}

// QuizOutcome is the scored result of a submitted session.
type QuizOutcome struct {
	QuizID         string         `json:"quizId"`
	QuizTitle      string         `json:"quizTitle"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Responses      []LeadResponse `json:"responses"`
}

// Lead is a verified identity plus a copy of the quiz outcome.
type Lead struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Mobile         string         `json:"mobile"`
	QuizID         string         `json:"quizId"`
	QuizTitle      string         `json:"quizTitle"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Responses      []LeadResponse `json:"responses"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}
