package mocks

import (
	"sync"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// Delivery is one message handed to MockNotificationService
type Delivery struct {
	Channel domain.Channel
	To      string
	Subject string
	Body    string
}

// MockNotificationService implements domain.NotificationService. Without
// a Send*Func override every message is accepted and kept in the outbox.
type MockNotificationService struct {
	SendSMSFunc   func(to, message string) error
	SendEmailFunc func(to, subject, body string) error

	mu     sync.Mutex
	outbox []Delivery
}

// NewMockNotificationService creates a MockNotificationService with an
// empty outbox
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SendSMS records the message, then defers to SendSMSFunc when set
func (m *MockNotificationService) SendSMS(to, message string) error {
	m.record(Delivery{Channel: domain.ChannelSMS, To: to, Body: message})
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	return nil
}

// SendEmail records the message, then defers to SendEmailFunc when set
func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	m.record(Delivery{Channel: domain.ChannelEmail, To: to, Subject: subject, Body: body})
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	return nil
}

// Deliveries returns the messages sent to recipient, oldest first
func (m *MockNotificationService) Deliveries(to string) []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Delivery
	for _, d := range m.outbox {
		if d.To == to {
			out = append(out, d)
		}
	}
	return out
}

func (m *MockNotificationService) record(d Delivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, d)
}

var _ domain.NotificationService = (*MockNotificationService)(nil)
