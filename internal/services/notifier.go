package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/example/oda/internal/config"
	"github.com/example/oda/internal/models"
)

// ErrOTPExpired marks a code past its validity window.
var ErrOTPExpired = errors.New("otp expired")

// Notifier dispatches OTP codes over the channel matching their type.
// Dispatch is best-effort: failures are logged and never surfaced to the
// caller, so verification flows keep working when a provider is down.
type Notifier struct {
	email *EmailService
	sms   *SMSService
}

// NewNotifier wires up available channels from config. Channels without
// credentials degrade to log-only so development works out of the box.
func NewNotifier(cfg *config.Config) *Notifier {
	n := &Notifier{}

	if email, err := NewEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName); err != nil {
		log.Printf("email dispatch disabled: %v", err)
	} else {
		n.email = email
	}

	if sms, err := NewSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom); err != nil {
		log.Printf("sms dispatch disabled: %v", err)
	} else {
		n.sms = sms
	}

	return n
}

// SendOTP delivers a verification code to its contact.
func (n *Notifier) SendOTP(otp *models.OTPVerification) {
	switch otp.OTPType {
	case models.OTPTypeEmail:
		if n.email == nil {
			log.Printf("email OTP for %s: %s", otp.Contact, otp.OTPCode)
			return
		}
		body := fmt.Sprintf("Your email verification code is: %s", otp.OTPCode)
		if err := n.email.Send(otp.Contact, "ODA - Email Verification", body); err != nil {
			log.Printf("failed to send email OTP to %s: %v", otp.Contact, err)
		}
	case models.OTPTypePhone:
		if n.sms == nil {
			log.Printf("phone OTP for %s: %s", otp.Contact, otp.OTPCode)
			return
		}
		body := fmt.Sprintf("Your ODA verification code is: %s", otp.OTPCode)
		if err := n.sms.Send(otp.Contact, body); err != nil {
			log.Printf("failed to send phone OTP to %s: %v", otp.Contact, err)
		}
	}
}

// SendResetCode delivers a password-reset code to an email or phone
// contact, best-effort like SendOTP.
func (n *Notifier) SendResetCode(contact, code string, byEmail bool) {
	if byEmail {
		if n.email == nil {
			log.Printf("reset code for %s: %s", contact, code)
			return
		}
		body := fmt.Sprintf("Your password reset code is: %s", code)
		if err := n.email.Send(contact, "ODA - Password Reset", body); err != nil {
			log.Printf("failed to send reset code to %s: %v", contact, err)
		}
		return
	}

	if n.sms == nil {
		log.Printf("reset code for %s: %s", contact, code)
		return
	}
	if err := n.sms.Send(contact, fmt.Sprintf("Your ODA password reset code is: %s", code)); err != nil {
		log.Printf("failed to send reset code to %s: %v", contact, err)
	}
}
