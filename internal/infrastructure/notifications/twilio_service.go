package notifications

import (
	"fmt"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/logging"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioServiceImpl implements domain.NotificationService
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioService creates a new Twilio notification service. Without a
// sender number SMS delivery is disabled and messages are dropped.
func NewTwilioService(accountSID, authToken, fromNumber string, logger *zap.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger.Named("notifications"),
	}
}

// SendSMS implements domain.NotificationService
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		t.logger.Warn("sms delivery disabled, message dropped", zap.String("to", logging.MaskPhone(to)))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		t.logger.Debug("sms queued", zap.String("to", logging.MaskPhone(to)), zap.String("sid", *resp.Sid))
	}
	return nil
}

// SendEmail implements domain.NotificationService. No mail provider is
// configured yet, so messages are dropped. The body carries the code and
// never reaches the log.
func (t *TwilioServiceImpl) SendEmail(to, subject, body string) error {
	t.logger.Warn("email delivery disabled, message dropped",
		zap.String("to", logging.MaskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}
