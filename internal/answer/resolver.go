// Package answer scores a selected option against a question's stored correct answer.
//
// A stored answer is interpreted exactly once, numeric first: a JSON number or a
// string holding an integer names an option index, anything else is compared as
// text against the option labels (trimmed, case-insensitive). None of the
// functions panic on missing or malformed data.
//
// DisplayAnswer uses the same numeric-first order instead of trying a text match
// first, so the answer shown can never disagree with the IsCorrect verdict.
package answer

import (
	"math"
	"strconv"
	"strings"

	"daily-quiz-service/internal/domain"
)

type kind int

const (
	kindNone kind = iota
	kindIndex
	kindText
)

type interpretation struct {
	kind  kind
	index int
	text  string
}

func interpret(a domain.CorrectAnswer) interpretation {
	raw := strings.TrimSpace(a.Raw)
	if a.Form == domain.AnswerMissing || raw == "" {
		return interpretation{kind: kindNone}
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return interpretation{kind: kindIndex, index: i}
	}
	if a.Form == domain.AnswerNumber {
		// 1.0 and 1e0 still name option 1
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			return interpretation{kind: kindIndex, index: int(f)}
		}
	}
	return interpretation{kind: kindText, text: raw}
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsCorrect reports whether selecting option selected answers q correctly.
func IsCorrect(q domain.Question, selected int) bool {
	if selected < 0 || selected >= len(q.Options) {
		return false
	}
	in := interpret(q.CorrectAnswer)
	switch in.kind {
	case kindIndex:
		return selected == in.index
	case kindText:
		return sameText(q.Options[selected], in.text)
	default:
		return false
	}
}

// CorrectIndex returns the option index holding the correct answer, if one can be determined.
func CorrectIndex(q domain.Question) (int, bool) {
	in := interpret(q.CorrectAnswer)
	switch in.kind {
	case kindIndex:
		if in.index >= 0 && in.index < len(q.Options) {
			return in.index, true
		}
	case kindText:
		for i, opt := range q.Options {
			if sameText(opt, in.text) {
				return i, true
			}
		}
	}
	return -1, false
}

// DisplayAnswer returns the readable text of the correct option. The bool is false
// when the question is data-incomplete and no answer can be shown.
func DisplayAnswer(q domain.Question) (string, bool) {
	i, ok := CorrectIndex(q)
	if !ok {
		return "", false
	}
	return OptionText(q, i), true
}

// OptionText returns the label of option i, or "Option n" (1-based) when the label is blank.
func OptionText(q domain.Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	if text := strings.TrimSpace(q.Options[i]); text != "" {
		return text
	}
	return "Option " + strconv.Itoa(i+1)
}
