package messaging

import (
	"context"
	"errors"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Ensure both services implement Service
func TestServicesImplementService(t *testing.T) {
	var _ Service = (*TwilioService)(nil)
	var _ Service = (*MockService)(nil)
}

func TestCanonicalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+1 (555) 010-2030", want: "15550102030"},
		{in: "15550102030", want: "15550102030"},
		{in: "12345", wantErr: true},
		{in: "no digits", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CanonicalizePhoneNumber(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRecipient) {
				t.Errorf("CanonicalizePhoneNumber(%q) error = %v, want ErrInvalidRecipient", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("CanonicalizePhoneNumber(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type fakeCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioService_SendMessage(t *testing.T) {
	creator := &fakeCreator{}
	svc, err := NewTwilioService(WithFromNumber("whatsapp:+15550000000"), withMessageCreator(creator))
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}
	if err := svc.SendMessage(context.Background(), "+1 555 010 2030", "hello"); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if len(creator.params) != 1 {
		t.Fatalf("expected 1 Twilio request, got %d", len(creator.params))
	}
	p := creator.params[0]
	if *p.To != "whatsapp:+15550102030" {
		t.Errorf("unexpected To %q", *p.To)
	}
	if *p.From != "whatsapp:+15550000000" {
		t.Errorf("unexpected From %q", *p.From)
	}
	if *p.Body != "hello" {
		t.Errorf("unexpected Body %q", *p.Body)
	}
}

func TestTwilioService_SendMessageErrors(t *testing.T) {
	creator := &fakeCreator{err: errors.New("boom")}
	svc, err := NewTwilioService(WithFromNumber("whatsapp:+15550000000"), withMessageCreator(creator))
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}
	if err := svc.SendMessage(context.Background(), "123", "hi"); !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("expected ErrInvalidRecipient, got %v", err)
	}
	if len(creator.params) != 0 {
		t.Errorf("invalid recipient should not reach Twilio")
	}
	if err := svc.SendMessage(context.Background(), "15550102030", "hi"); err == nil {
		t.Error("expected Twilio error to propagate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.SendMessage(ctx, "15550102030", "hi"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewTwilioServiceRequiresConfig(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	if _, err := NewTwilioService(); err == nil {
		t.Error("expected error without from number")
	}
	if _, err := NewTwilioService(WithFromNumber("whatsapp:+15550000000")); err == nil {
		t.Error("expected error without credentials")
	}
	svc, err := NewTwilioService(WithAccountSID("AC123"), WithAuthToken("token"), WithFromNumber("whatsapp:+15550000000"))
	if err != nil {
		t.Fatalf("NewTwilioService with credentials: %v", err)
	}
	if svc.from != "whatsapp:+15550000000" {
		t.Errorf("unexpected from %q", svc.from)
	}
}

func TestNewTwilioServiceEnvFallback(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_NUMBER", "whatsapp:+15551112222")
	svc, err := NewTwilioService()
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}
	if svc.from != "whatsapp:+15551112222" {
		t.Errorf("expected from number from env, got %q", svc.from)
	}
}

func TestMockService(t *testing.T) {
	m := NewMockService()
	if err := m.SendMessage(context.Background(), "+1-555-010-2030", "body"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	sent := m.Sent()
	if len(sent) != 1 || sent[0].To != "15550102030" || sent[0].Body != "body" {
		t.Errorf("unexpected sent messages: %+v", sent)
	}
	m.Err = errors.New("down")
	if err := m.SendMessage(context.Background(), "15550102030", "again"); err == nil {
		t.Error("expected configured error")
	}
}
