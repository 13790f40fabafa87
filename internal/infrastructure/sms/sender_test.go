package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
)

type MockMessageCreator struct {
	mock.Mock
}

func (m *MockMessageCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	args := m.Called(params)
	msg, _ := args.Get(0).(*openapi.ApiV2010Message)
	return msg, args.Error(1)
}

func newTestSender(client messageCreator) *TwilioSender {
	return &TwilioSender{
		client:      client,
		from:        "+15005550006",
		countryCode: "+91",
		appName:     "VeggieFresh",
		expiryMins:  5,
		log:         logger.Discard(),
	}
}

func TestTwilioSenderBuildsMessage(t *testing.T) {
	client := new(MockMessageCreator)
	sid := "SM123"
	client.On("CreateMessage", mock.MatchedBy(func(p *openapi.CreateMessageParams) bool {
		return *p.To == "+919876543210" &&
			*p.From == "+15005550006" &&
			*p.Body == "Your VeggieFresh verification code is: 1234. This code will expire in 5 minutes."
	})).Return(&openapi.ApiV2010Message{Sid: &sid}, nil).Once()

	require.NoError(t, newTestSender(client).SendOTP(context.Background(), "9876543210", "1234"))
	client.AssertExpectations(t)
}

func TestTwilioSenderKeepsE164(t *testing.T) {
	assert.Equal(t, "+447700900123", newTestSender(nil).e164("+447700900123"))
}

func TestTwilioSenderError(t *testing.T) {
	client := new(MockMessageCreator)
	client.On("CreateMessage", mock.Anything).Return(nil, errors.New("21211 invalid number"))

	err := newTestSender(client).SendOTP(context.Background(), "9876543210", "1234")
	assert.Error(t, err)
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	cfg := &config.Config{}
	_, ok := NewSender(cfg, logger.Discard()).(*LogSender)
	assert.True(t, ok)
	assert.NoError(t, NewLogSender(logger.Discard()).SendOTP(context.Background(), "9876543210", "1234"))
}
