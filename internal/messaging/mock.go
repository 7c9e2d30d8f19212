package messaging

import (
	"context"
	"sync"
)

// SentMessage records one delivery made through MockService.
type SentMessage struct {
	To   string
	Body string
}

// MockService records messages instead of delivering them.
type MockService struct {
	mu   sync.Mutex
	sent []SentMessage
	Err  error // returned from SendMessage when set
}

// NewMockService returns an empty MockService.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizePhoneNumber(recipient)
}

func (m *MockService) SendMessage(ctx context.Context, to string, body string) error {
	canonical, err := m.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMessage{To: canonical, Body: body})
	return nil
}

// Sent returns a copy of every recorded message.
func (m *MockService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
