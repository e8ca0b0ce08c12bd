package domain

import "errors"

var (
	// ErrQuizNotFound indicates no quiz is scheduled for the requested day.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrOTPRequestNotFound is returned when a dispatcher message names an unknown record.
	ErrOTPRequestNotFound = errors.New("otp request not found")
	// ErrVisitNotFound is returned when a page-view visit expired or never existed.
	ErrVisitNotFound = errors.New("visit not found")

	// ErrSessionSubmitted rejects changes after the quiz was submitted.
	ErrSessionSubmitted = errors.New("quiz already submitted")
	// ErrSessionNotSubmitted rejects outcome reads before submission.
	ErrSessionNotSubmitted = errors.New("quiz not submitted")
	// ErrQuestionOutOfRange rejects navigation outside the quiz.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrOptionOutOfRange rejects selecting an option the question does not have.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrIncompleteResponses rejects submit while a question is unanswered.
	ErrIncompleteResponses = errors.New("all questions must be answered")
	// ErrEmptyQuiz rejects submit on a quiz with no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")

	// ErrInvalidMobile indicates the mobile number is not exactly 10 digits.
	ErrInvalidMobile = errors.New("mobile number must be 10 digits")
	// ErrNameRequired indicates an empty lead name.
	ErrNameRequired = errors.New("name is required")
	// ErrOTPNotVerified rejects lead capture before the phone was verified.
	ErrOTPNotVerified = errors.New("mobile number not verified")
	// ErrMobileMismatch rejects a lead whose mobile differs from the verified one.
	ErrMobileMismatch = errors.New("mobile number differs from verified number")
	// ErrLeadAlreadySubmitted rejects a second lead for one visit.
	ErrLeadAlreadySubmitted = errors.New("lead already submitted")
	// ErrOperationInProgress rejects re-entrant actions while one is outstanding.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrSMSNotConfigured means gateway credentials are missing.
	ErrSMSNotConfigured = errors.New("sms gateway credentials not configured")
)
