package app_test

import (
	"errors"
	"testing"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
)

func TestSessionScoresMixedAnswerForms(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())

	if _, err := session.SelectOption(1); err != nil {
		t.Fatalf("select q1: %v", err)
	}
	if _, err := session.GoTo(1); err != nil {
		t.Fatalf("goto q2: %v", err)
	}
	fb, err := session.SelectOption(2)
	if err != nil {
		t.Fatalf("select q2: %v", err)
	}
	if !fb.Correct {
		t.Fatalf("expected text answer \"c\" to match option \"C\"")
	}
	if fb.CorrectAnswer != "C" || !fb.AllAnswered {
		t.Fatalf("unexpected feedback %+v", fb)
	}

	score, err := session.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if score != 2 || session.State() != app.Submitted {
		t.Fatalf("expected score 2 and submitted, got %d %s", score, session.State())
	}
}

func TestSubmitRequiresEveryAnswer(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())
	_, _ = session.SelectOption(0)

	if _, err := session.Submit(); !errors.Is(err, domain.ErrIncompleteResponses) {
		t.Fatalf("expected incomplete error, got %v", err)
	}
	if session.State() != app.Answering {
		t.Fatalf("expected session still answering")
	}
	if _, ok := session.Score(); ok {
		t.Fatalf("expected score unset before submit")
	}
}

func TestSubmittedSessionIsFrozen(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())
	_, _ = session.SelectOption(0)
	_, _ = session.GoTo(1)
	_, _ = session.SelectOption(0)
	score, err := session.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	before := session.Responses()

	if _, err := session.SelectOption(2); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected submitted error, got %v", err)
	}
	_, _ = session.GoTo(0)
	if _, err := session.SelectOption(1); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected submitted error, got %v", err)
	}
	if _, err := session.Submit(); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}

	after := session.Responses()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("responses changed after submit: %v -> %v", before, after)
		}
	}
	if got, _ := session.Score(); got != score {
		t.Fatalf("score changed after submit: %d -> %d", score, got)
	}
}

func TestGoToRestoresStoredResponse(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())
	_, _ = session.SelectOption(1)
	_, _ = session.GoTo(1)

	view, err := session.GoTo(0)
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if !view.Answered || view.Selected != 1 || !view.Correct {
		t.Fatalf("expected stored correct answer restored, got %+v", view)
	}

	if _, err := session.GoTo(2); !errors.Is(err, domain.ErrQuestionOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := session.GoTo(-1); !errors.Is(err, domain.ErrQuestionOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if session.CurrentIndex() != 0 {
		t.Fatalf("rejected goto moved the pointer to %d", session.CurrentIndex())
	}
}

func TestSelectOptionRejectsUnknownOption(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())
	if _, err := session.SelectOption(3); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected option out of range, got %v", err)
	}
	if session.Responses()[0] != app.Unanswered {
		t.Fatalf("rejected select recorded a response")
	}
}

func TestEmptyQuizNeverCompletes(t *testing.T) {
	session := app.NewQuizSession(domain.Quiz{ID: "empty"})
	if session.CanSubmit() {
		t.Fatalf("empty quiz must not offer submit")
	}
	if _, err := session.Submit(); !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected empty quiz error, got %v", err)
	}
	if _, err := session.SelectOption(0); !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected empty quiz error, got %v", err)
	}
}

func TestOutcomeIsASnapshot(t *testing.T) {
	session := app.NewQuizSession(twoQuestionQuiz())
	if _, err := session.Outcome(); !errors.Is(err, domain.ErrSessionNotSubmitted) {
		t.Fatalf("expected not submitted, got %v", err)
	}
	_, _ = session.SelectOption(0)
	_, _ = session.GoTo(1)
	_, _ = session.SelectOption(2)
	_, _ = session.Submit()

	outcome, err := session.Outcome()
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if outcome.Score != 1 || outcome.TotalQuestions != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	first := outcome.Responses[0]
	if first.QuestionNumber != 1 || first.SelectedOptionIndex != 0 || first.SelectedOptionText != "A" || first.CorrectAnswerText != "B" {
		t.Fatalf("unexpected first response %+v", first)
	}
	outcome.Responses[0].SelectedOptionIndex = 9
	again, _ := session.Outcome()
	if again.Responses[0].SelectedOptionIndex != 0 {
		t.Fatalf("outcome shares memory with session")
	}
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz1",
		Title: "Letters",
		Questions: []domain.Question{
			{Text: "Second letter?", Options: []string{"A", "B", "C"}, CorrectAnswer: domain.IndexAnswer(1)},
			{Text: "Third letter?", Options: []string{"a", "b", "C"}, CorrectAnswer: domain.TextAnswer("c")},
		},
	}
}
