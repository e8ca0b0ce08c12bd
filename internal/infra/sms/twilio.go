package sms

import (
	"context"
	"fmt"
	"log"
	"strings"

	"daily-quiz-service/internal/domain"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DefaultCountryCode is prefixed to 10-digit mobile numbers.
const DefaultCountryCode = "+91"

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
}

// NewTwilioSender returns domain.ErrSMSNotConfigured if any credential is blank.
func NewTwilioSender(accountSID, authToken, from, countryCode string) (*TwilioSender, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" || strings.TrimSpace(from) == "" {
		return nil, domain.ErrSMSNotConfigured
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from, countryCode: countryCode}, nil
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(E164(to, s.countryCode))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid != nil {
		log.Printf("sms: twilio accepted message %s", *resp.Sid)
	}
	return nil
}

// E164 turns a national number into +<country><number>. Numbers already starting
// with '+' are returned unchanged.
func E164(number, countryCode string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "+") {
		return number
	}
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}
	return countryCode + number
}
