package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// DefaultOTPValidity is how long a code stays acceptable after creation.
const DefaultOTPValidity = 5 * time.Minute

// OTPRequestStore durably creates OTP request records. Creating a record is what
// triggers SMS delivery, so implementations wired in production publish a trigger.
type OTPRequestStore interface {
	CreateOTPRequest(ctx context.Context, req domain.OTPRequest) (domain.OTPRequest, error)
}

// OTPService issues per-visit OTP challenges.
type OTPService struct {
	store       OTPRequestStore
	validity    time.Duration
	maxAttempts int
	now         func() time.Time
	generate    func() (string, error)
}

// NewOTPService builds the service. maxAttempts <= 0 allows unlimited verification attempts.
func NewOTPService(store OTPRequestStore, validity time.Duration, maxAttempts int) *OTPService {
	if validity <= 0 {
		validity = DefaultOTPValidity
	}
	return &OTPService{
		store:       store,
		validity:    validity,
		maxAttempts: maxAttempts,
		now:         time.Now,
		generate:    GenerateCode,
	}
}

// WithClock swaps the time source; tests use it to move past expiry.
func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

// WithCodeGenerator swaps the code source for deterministic tests.
func (s *OTPService) WithCodeGenerator(gen func() (string, error)) *OTPService {
	s.generate = gen
	return s
}

// Validity is the lifetime of an issued code.
func (s *OTPService) Validity() time.Duration {
	return s.validity
}

// NewChallenge starts an empty challenge for one visit.
func (s *OTPService) NewChallenge() *OTPChallenge {
	return &OTPChallenge{svc: s}
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// ValidMobile reports whether mobile is exactly 10 ASCII digits.
func ValidMobile(mobile string) bool {
	if len(mobile) != 10 {
		return false
	}
	for i := 0; i < len(mobile); i++ {
		if mobile[i] < '0' || mobile[i] > '9' {
			return false
		}
	}
	return true
}

type issuedCode struct {
	requestID string
	mobile    string
	code      string
	expireAt  time.Time
	attempts  int
}

// OTPChallenge holds the most recent code issued in one visit. The code never leaves
// the server; only the SMS carries it.
type OTPChallenge struct {
	svc      *OTPService
	current  *issuedCode
	verified string
}

// RequestCode validates mobile, issues a fresh code and stores the request record.
// Any earlier code in this challenge stops being comparable as soon as this is called.
// It returns once the record exists; delivery happens asynchronously.
func (c *OTPChallenge) RequestCode(ctx context.Context, mobile, quizID string) (domain.OTPRequest, error) {
	mobile = strings.TrimSpace(mobile)
	if !ValidMobile(mobile) {
		return domain.OTPRequest{}, domain.ErrInvalidMobile
	}
	c.current = nil
	c.verified = ""

	code, err := c.svc.generate()
	if err != nil {
		return domain.OTPRequest{}, err
	}
	req := domain.OTPRequest{
		ID:           uuid.NewString(),
		MobileNumber: mobile,
		Code:         code,
		CreatedAt:    c.svc.now().UTC(),
	}
	if quizID != "" {
		req.QuizID = &quizID
	}
	stored, err := c.svc.store.CreateOTPRequest(ctx, req)
	if err != nil {
		return domain.OTPRequest{}, fmt.Errorf("create otp request: %w", err)
	}
	c.current = &issuedCode{
		requestID: stored.ID,
		mobile:    stored.MobileNumber,
		code:      stored.Code,
		expireAt:  stored.CreatedAt.Add(c.svc.validity),
	}
	if stored.ExpireAt != nil {
		c.current.expireAt = *stored.ExpireAt
	}
	return stored, nil
}

// VerifyCode compares submitted against the latest issued code. It is false when no
// code was issued, the code expired, or the attempt budget is spent.
func (c *OTPChallenge) VerifyCode(submitted string) bool {
	cur := c.current
	if cur == nil {
		return false
	}
	if !c.svc.now().Before(cur.expireAt) {
		return false
	}
	if c.svc.maxAttempts > 0 && cur.attempts >= c.svc.maxAttempts {
		return false
	}
	cur.attempts++
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(submitted)), []byte(cur.code)) != 1 {
		return false
	}
	c.verified = cur.mobile
	return true
}

// Verified returns the mobile number proven by a successful VerifyCode.
func (c *OTPChallenge) Verified() (string, bool) {
	return c.verified, c.verified != ""
}

// Pending reports whether a code has been issued in this challenge.
func (c *OTPChallenge) Pending() bool {
	return c.current != nil
}

// RequestID is the record id of the latest issued code.
func (c *OTPChallenge) RequestID() string {
	if c.current == nil {
		return ""
	}
	return c.current.requestID
}
