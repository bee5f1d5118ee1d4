package services

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends text messages via Twilio.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates an SMSService. Returns an error when credentials
// are missing so callers can fall back to log-only dispatch.
func NewSMSService(accountSID, authToken, from string) (*SMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &SMSService{client: client, from: from}, nil
}

// Send delivers a plain text SMS.
func (s *SMSService) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}
