package providers

import (
	"context"
	"errors"
	"sync"
)

type fakeMessaging struct {
	name    string
	sendErr error
	block   bool
	panics  bool
	pingErr error

	mu    sync.Mutex
	calls int
	last  OutboundMessage
}

func (f *fakeMessaging) Name() string               { return f.name }
func (f *fakeMessaging) Capabilities() []Capability { return []Capability{CapabilityMessaging} }

func (f *fakeMessaging) SendSMS(ctx context.Context, msg OutboundMessage) (*Receipt, error) {
	f.mu.Lock()
	f.calls++
	f.last = msg
	f.mu.Unlock()

	if f.panics {
		panic("boom")
	}
	if f.block {
		select {} // ignores ctx on purpose
	}
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &Receipt{MessageID: f.name + "-msg-1", Status: "queued"}, nil
}

func (f *fakeMessaging) SendWhatsAppText(ctx context.Context, msg OutboundMessage) (*Receipt, error) {
	return f.SendSMS(ctx, msg)
}

func (f *fakeMessaging) SendWhatsAppTemplate(ctx context.Context, msg TemplateMessage) (*Receipt, error) {
	return f.SendSMS(ctx, OutboundMessage{From: msg.From, To: msg.To, Body: msg.TemplateName})
}

func (f *fakeMessaging) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeMessaging) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNumbers struct {
	name string
}

func (f *fakeNumbers) Name() string { return f.name }
func (f *fakeNumbers) Capabilities() []Capability {
	return []Capability{CapabilityVirtualNumbers}
}
func (f *fakeNumbers) GenerateNumber(ctx context.Context, countryCode string) (string, error) {
	if countryCode == "" {
		return "", errors.New("country code required")
	}
	return "+15550001111", nil
}
func (f *fakeNumbers) ReleaseNumber(ctx context.Context, number string) error { return nil }

type fakeBot struct {
	name string
	err  error
}

func (f *fakeBot) Name() string               { return f.name }
func (f *fakeBot) Capabilities() []Capability { return []Capability{CapabilityChatbot} }
func (f *fakeBot) RouteToBot(ctx context.Context, req RouteRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "session-" + req.BotID, nil
}
func (f *fakeBot) DisconnectBot(ctx context.Context, sessionID string) error { return f.err }

// liar declares a capability it does not implement.
type liar struct{}

func (liar) Name() string               { return "liar" }
func (liar) Capabilities() []Capability { return []Capability{CapabilityChatbot} }
