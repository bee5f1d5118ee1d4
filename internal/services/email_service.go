package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional email via SendGrid.
type EmailService struct {
	apiKey   string
	from     string
	fromName string
}

// NewEmailService creates an EmailService. Returns an error when the API
// key is missing so callers can fall back to log-only dispatch.
func NewEmailService(apiKey, from, fromName string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing SendGrid API key")
	}
	return &EmailService{apiKey: apiKey, from: from, fromName: fromName}, nil
}

// Send delivers a plain text email.
func (s *EmailService) Send(toEmail, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
