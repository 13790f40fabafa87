// internal/infrastructure/sms/sender.go
package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
)

const otpMessage = "Your %s verification code is: %s. This code will expire in %d minutes."

// messageCreator is the slice of the Twilio REST client the sender uses
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender delivers OTPs as SMS through Twilio
type TwilioSender struct {
	client      messageCreator
	from        string
	countryCode string
	appName     string
	expiryMins  int
	log         logrus.FieldLogger
}

// NewTwilioSender creates a Twilio-backed sender
func NewTwilioSender(cfg *config.Config, log logrus.FieldLogger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.External.Twilio.AccountSID,
		Password: cfg.External.Twilio.AuthToken,
	})
	return &TwilioSender{
		client:      client.Api,
		from:        cfg.External.Twilio.FromNumber,
		countryCode: cfg.External.Twilio.CountryCode,
		appName:     cfg.App.Name,
		expiryMins:  int(cfg.Security.OTPExpiry.Minutes()),
		log:         log,
	}
}

// SendOTP sends the code to a national number, prefixed with the configured country code
func (s *TwilioSender) SendOTP(ctx context.Context, phone, code string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(s.e164(phone))
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf(otpMessage, s.appName, code, s.expiryMins))

	msg, err := s.client.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}

	if msg != nil && msg.Sid != nil {
		s.log.WithField("message_sid", *msg.Sid).Debug("OTP SMS queued")
	}
	return nil
}

func (s *TwilioSender) e164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return s.countryCode + phone
}

// LogSender writes codes to the log instead of sending them. Used when Twilio is
// not configured.
type LogSender struct {
	log logrus.FieldLogger
}

// NewLogSender creates a logging sender
func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

// SendOTP logs the code
func (s *LogSender) SendOTP(ctx context.Context, phone, code string) error {
	s.log.WithFields(logrus.Fields{
		"phone": phone,
		"otp":   code,
	}).Warn("SMS provider not configured, OTP logged instead of sent")
	return nil
}

// NewSender picks Twilio when credentials are present
func NewSender(cfg *config.Config, log logrus.FieldLogger) user.SMSSender {
	if cfg.TwilioConfigured() {
		return NewTwilioSender(cfg, log)
	}
	return NewLogSender(log)
}
