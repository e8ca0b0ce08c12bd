package app

import (
	"daily-quiz-service/internal/answer"
	"daily-quiz-service/internal/domain"
)

// Unanswered marks a response slot the user has not filled yet.
const Unanswered = -1

// SessionState is the quiz session's position in its lifecycle.
type SessionState int

const (
	Answering SessionState = iota
	Submitted
)

func (s SessionState) String() string {
	if s == Submitted {
		return "submitted"
	}
	return "answering"
}

// Feedback is the immediate verdict shown after selecting an option.
type Feedback struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	AllAnswered   bool   `json:"allAnswered"`
}

// QuestionView is what the user sees when landing on a question.
type QuestionView struct {
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Question domain.Question `json:"-"`
	Selected int             `json:"selected"`
	Answered bool            `json:"answered"`
	Correct  bool            `json:"correct"`
}

// QuizSession tracks one page view's progress through a quiz.
// It is not safe for concurrent use; Visit serializes access.
type QuizSession struct {
	quiz      domain.Quiz
	current   int
	responses []int
	state     SessionState
	score     int
}

func NewQuizSession(quiz domain.Quiz) *QuizSession {
	responses := make([]int, len(quiz.Questions))
	for i := range responses {
		responses[i] = Unanswered
	}
	return &QuizSession{quiz: quiz, responses: responses}
}

func (s *QuizSession) Quiz() domain.Quiz {
	return s.quiz
}

func (s *QuizSession) State() SessionState {
	return s.state
}

func (s *QuizSession) CurrentIndex() int {
	return s.current
}

// Responses returns a copy of the recorded option indexes.
func (s *QuizSession) Responses() []int {
	out := make([]int, len(s.responses))
	copy(out, s.responses)
	return out
}

// Score returns the score fixed at submission; ok is false before that.
func (s *QuizSession) Score() (score int, ok bool) {
	return s.score, s.state == Submitted
}

// AllAnswered reports whether every question has a response. An empty quiz never does.
func (s *QuizSession) AllAnswered() bool {
	if len(s.responses) == 0 {
		return false
	}
	for _, r := range s.responses {
		if r == Unanswered {
			return false
		}
	}
	return true
}

// CanSubmit reports whether a submit affordance should be offered.
func (s *QuizSession) CanSubmit() bool {
	return s.state == Answering && s.AllAnswered()
}

// Current returns the view of the question under the pointer.
func (s *QuizSession) Current() QuestionView {
	return s.view(s.current)
}

// SelectOption records option for the current question and returns the verdict.
// The question pointer does not move.
func (s *QuizSession) SelectOption(option int) (Feedback, error) {
	if s.state == Submitted {
		return Feedback{}, domain.ErrSessionSubmitted
	}
	if len(s.quiz.Questions) == 0 {
		return Feedback{}, domain.ErrEmptyQuiz
	}
	q := s.quiz.Questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return Feedback{}, domain.ErrOptionOutOfRange
	}
	s.responses[s.current] = option
	display, _ := answer.DisplayAnswer(q)
	return Feedback{
		QuestionIndex: s.current,
		Selected:      option,
		Correct:       answer.IsCorrect(q, option),
		CorrectAnswer: display,
		AllAnswered:   s.AllAnswered(),
	}, nil
}

// GoTo moves the pointer and restores the stored response for display.
func (s *QuizSession) GoTo(index int) (QuestionView, error) {
	if index < 0 || index >= len(s.quiz.Questions) {
		return QuestionView{}, domain.ErrQuestionOutOfRange
	}
	s.current = index
	return s.view(index), nil
}

// Submit scores the session. It is accepted once, and only when every question is answered.
func (s *QuizSession) Submit() (int, error) {
	if s.state == Submitted {
		return s.score, domain.ErrSessionSubmitted
	}
	if len(s.quiz.Questions) == 0 {
		return 0, domain.ErrEmptyQuiz
	}
	if !s.AllAnswered() {
		return 0, domain.ErrIncompleteResponses
	}
	score := 0
	for i, q := range s.quiz.Questions {
		if answer.IsCorrect(q, s.responses[i]) {
			score++
		}
	}
	s.score = score
	s.state = Submitted
	return score, nil
}

// Outcome snapshots the submitted result. The returned value shares nothing with the session.
func (s *QuizSession) Outcome() (domain.QuizOutcome, error) {
	if s.state != Submitted {
		return domain.QuizOutcome{}, domain.ErrSessionNotSubmitted
	}
	responses := make([]domain.LeadResponse, len(s.quiz.Questions))
	for i, q := range s.quiz.Questions {
		correctText, _ := answer.DisplayAnswer(q)
		responses[i] = domain.LeadResponse{
			QuestionNumber:      i + 1,
			SelectedOptionIndex: s.responses[i],
			SelectedOptionText:  answer.OptionText(q, s.responses[i]),
			CorrectAnswerText:   correctText,
		}
	}
	return domain.QuizOutcome{
		QuizID:         s.quiz.ID,
		QuizTitle:      s.quiz.Title,
		Score:          s.score,
		TotalQuestions: len(s.quiz.Questions),
		Responses:      responses,
	}, nil
}

func (s *QuizSession) view(index int) QuestionView {
	v := QuestionView{Index: index, Total: len(s.quiz.Questions), Selected: Unanswered}
	if index < 0 || index >= len(s.quiz.Questions) {
		return v
	}
	v.Question = s.quiz.Questions[index]
	if sel := s.responses[index]; sel != Unanswered {
		v.Selected = sel
		v.Answered = true
		v.Correct = answer.IsCorrect(v.Question, sel)
	}
	return v
}
