package app

import (
	"context"
	"errors"
	"log"
	"time"

	"daily-quiz-service/internal/domain"
)

// QuizFinder queries the document store for the latest quiz dated within [start, end].
// It returns domain.ErrQuizNotFound when the window is empty.
type QuizFinder interface {
	FindQuizInRange(ctx context.Context, start, end time.Time) (domain.Quiz, error)
}

// QuizResolver finds the quiz scheduled for a calendar day.
type QuizResolver struct {
	finder  QuizFinder
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

func NewQuizResolver(finder QuizFinder, loc *time.Location, timeout time.Duration) *QuizResolver {
	return NewQuizResolverWithClock(finder, loc, timeout, time.Now)
}

// NewQuizResolverWithClock is used by tests to pin "today".
func NewQuizResolverWithClock(finder QuizFinder, loc *time.Location, timeout time.Duration, now func() time.Time) *QuizResolver {
	if loc == nil {
		loc = time.Local
	}
	return &QuizResolver{finder: finder, loc: loc, timeout: timeout, now: now}
}

// DayWindow returns the first and last millisecond of day's calendar date in loc.
func DayWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// Location is the zone used to decide which calendar day a timestamp belongs to.
func (r *QuizResolver) Location() *time.Location {
	return r.loc
}

// Today resolves the quiz for the current local date.
func (r *QuizResolver) Today(ctx context.Context) (domain.Quiz, bool) {
	return r.Resolve(ctx, r.now())
}

// Resolve returns the quiz for day's date, or false when there is none.
// Lookup failures and timeouts are logged and reported as "no quiz".
func (r *QuizResolver) Resolve(ctx context.Context, day time.Time) (domain.Quiz, bool) {
	start, end := DayWindow(day, r.loc)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type result struct {
		quiz domain.Quiz
		err  error
	}
	done := make(chan result, 1)
	go func() {
		quiz, err := r.finder.FindQuizInRange(ctx, start, end)
		done <- result{quiz: quiz, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if !errors.Is(res.err, domain.ErrQuizNotFound) {
				log.Printf("quiz: lookup for %s failed: %v", start.Format(time.DateOnly), res.err)
			}
			return domain.Quiz{}, false
		}
		return res.quiz, true
	case <-ctx.Done():
		log.Printf("quiz: lookup for %s abandoned: %v", start.Format(time.DateOnly), ctx.Err())
		return domain.Quiz{}, false
	}
}
