package app

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// VisitRepository abstracts where live visits are kept (in-memory, Redis, etc).
type VisitRepository interface {
	Save(v *Visit)
	Get(visitID string) (*Visit, bool)
	Delete(visitID string)
}

// QuizService contains the page-view use cases: take today's quiz, answer, submit,
// verify a phone number and leave a lead.
type QuizService struct {
	visits  VisitRepository
	quizzes *QuizResolver
	otp     *OTPService
	leads   *LeadService
}

func NewQuizService(visits VisitRepository, quizzes *QuizResolver, otp *OTPService, leads *LeadService) *QuizService {
	return &QuizService{visits: visits, quizzes: quizzes, otp: otp, leads: leads}
}

// Start opens a visit on the quiz for day. A zero day means today.
func (s *QuizService) Start(ctx context.Context, day time.Time) (*Visit, error) {
	var (
		quiz domain.Quiz
		ok   bool
	)
	if day.IsZero() {
		quiz, ok = s.quizzes.Today(ctx)
	} else {
		quiz, ok = s.quizzes.Resolve(ctx, day)
	}
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	v := NewVisit(uuid.NewString(), quiz, s.otp.NewChallenge())
	s.visits.Save(v)
	return v, nil
}

// OTPValidity is how long an issued code stays acceptable.
func (s *QuizService) OTPValidity() time.Duration {
	return s.otp.Validity()
}

// Resume returns a visit that is still live.
func (s *QuizService) Resume(_ context.Context, visitID string) (*Visit, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return nil, domain.ErrVisitNotFound
	}
	return v, nil
}

// SelectOption records an answer for the visit's current question.
func (s *QuizService) SelectOption(_ context.Context, visitID string, option int) (Feedback, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return Feedback{}, domain.ErrVisitNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.SelectOption(option)
}

// GoTo moves the visit to another question.
func (s *QuizService) GoTo(_ context.Context, visitID string, index int) (QuestionView, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return QuestionView{}, domain.ErrVisitNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.GoTo(index)
}

// Submit scores the visit's session.
func (s *QuizService) Submit(_ context.Context, visitID string) (int, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return 0, domain.ErrVisitNotFound
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.Submit()
}

// RequestOTP issues a code for mobile after the quiz is submitted.
func (s *QuizService) RequestOTP(ctx context.Context, visitID, mobile string) (domain.OTPRequest, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return domain.OTPRequest{}, domain.ErrVisitNotFound
	}
	if err := v.begin(); err != nil {
		return domain.OTPRequest{}, err
	}
	defer v.end()
	if v.State() != Submitted {
		return domain.OTPRequest{}, domain.ErrSessionNotSubmitted
	}
	return v.otp.RequestCode(ctx, mobile, v.session.Quiz().ID)
}

// VerifyOTP checks a user-entered code. A mismatch is (false, nil).
func (s *QuizService) VerifyOTP(_ context.Context, visitID, code string) (bool, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return false, domain.ErrVisitNotFound
	}
	if err := v.begin(); err != nil {
		return false, err
	}
	defer v.end()
	return v.otp.VerifyCode(code), nil
}

// SubmitLead stores the visitor's lead using the verified mobile number.
func (s *QuizService) SubmitLead(ctx context.Context, visitID, name string) (domain.Lead, error) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return domain.Lead{}, domain.ErrVisitNotFound
	}
	if err := v.begin(); err != nil {
		return domain.Lead{}, err
	}
	defer v.end()
	if v.Finished() {
		return domain.Lead{}, domain.ErrLeadAlreadySubmitted
	}
	mobile, ok := v.otp.Verified()
	if !ok {
		return domain.Lead{}, domain.ErrOTPNotVerified
	}
	lead, err := s.leads.SubmitLead(ctx, name, mobile, v.otp, v.session)
	if err != nil {
		return domain.Lead{}, err
	}
	v.mu.Lock()
	v.lead = &lead
	v.mu.Unlock()
	return lead, nil
}

// Leave drops a finished visit. Unfinished visits stay resumable until the store expires them.
func (s *QuizService) Leave(_ context.Context, visitID string) {
	v, ok := s.visits.Get(visitID)
	if !ok {
		return
	}
	if v.Finished() {
		s.visits.Delete(visitID)
	}
}

// Visit is one page view: a quiz session, its OTP challenge and at most one lead.
type Visit struct {
	id string

	mu       sync.Mutex
	inFlight bool
	session  *QuizSession
	otp      *OTPChallenge
	lead     *domain.Lead
}

// NewVisit is exported for infrastructure layers and tests that seed visits.
func NewVisit(id string, quiz domain.Quiz, otp *OTPChallenge) *Visit {
	return &Visit{
		id:      id,
		session: NewQuizSession(quiz),
		otp:     otp,
	}
}

func (v *Visit) ID() string {
	return v.id
}

func (v *Visit) Quiz() domain.Quiz {
	return v.session.Quiz()
}

// Current returns the view of the question under the session pointer.
func (v *Visit) Current() QuestionView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.Current()
}

// State is the session's lifecycle state.
func (v *Visit) State() SessionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.State()
}

// Finished reports whether the visit already produced its lead.
func (v *Visit) Finished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lead != nil
}

// begin claims the visit for one outstanding operation.
func (v *Visit) begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inFlight {
		return domain.ErrOperationInProgress
	}
	v.inFlight = true
	return nil
}

func (v *Visit) end() {
	v.mu.Lock()
	v.inFlight = false
	v.mu.Unlock()
}
