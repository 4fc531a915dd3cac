package providers

import (
	"context"
	"errors"
	"fmt"
)

// Capability names a category of provider functionality.
type Capability string

const (
	CapabilityMessaging      Capability = "messaging"
	CapabilityVirtualNumbers Capability = "virtual_numbers"
	CapabilityChatbot        Capability = "chatbot"
)

// ParseCapability validates a capability name coming from outside.
func ParseCapability(s string) (Capability, error) {
	switch c := Capability(s); c {
	case CapabilityMessaging, CapabilityVirtualNumbers, CapabilityChatbot:
		return c, nil
	default:
		return "", fmt.Errorf("unknown capability: %s", s)
	}
}

var (
	// ErrProviderUnavailable means no registered, active provider matches
	// the request. It is a configuration problem, not a transient one.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderSend wraps a failed provider call.
	ErrProviderSend = errors.New("provider send failed")
	// ErrUnsupported is returned by providers for operations their backend
	// cannot perform, e.g. SMS over a WhatsApp-only API.
	ErrUnsupported = errors.New("operation not supported by provider")
)

// Provider is a pluggable backend. Implementations add one or more of the
// capability interfaces below.
type Provider interface {
	Name() string
	Capabilities() []Capability
}

// Messaging sends SMS and WhatsApp messages.
type Messaging interface {
	Provider
	SendSMS(ctx context.Context, msg OutboundMessage) (*Receipt, error)
	SendWhatsAppText(ctx context.Context, msg OutboundMessage) (*Receipt, error)
	SendWhatsAppTemplate(ctx context.Context, msg TemplateMessage) (*Receipt, error)
}

// VirtualNumbers issues and releases phone numbers.
type VirtualNumbers interface {
	Provider
	GenerateNumber(ctx context.Context, countryCode string) (string, error)
	ReleaseNumber(ctx context.Context, number string) error
}

// Chatbot hands a conversation to a bot and ends it.
type Chatbot interface {
	Provider
	RouteToBot(ctx context.Context, req RouteRequest) (string, error)
	DisconnectBot(ctx context.Context, sessionID string) error
}

// HealthChecker is implemented by providers that can report reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type OutboundMessage struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// TemplateMessage targets a pre-approved WhatsApp template. Variables are
// positional.
type TemplateMessage struct {
	From         string   `json:"from,omitempty"`
	To           string   `json:"to"`
	TemplateName string   `json:"template_name"`
	Language     string   `json:"language,omitempty"`
	Variables    []string `json:"variables"`
}

type Receipt struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type RouteRequest struct {
	BotID          string `json:"bot_id"`
	OwnerID        string `json:"owner_id"`
	Contact        string `json:"contact"`
	From           string `json:"from,omitempty"`
	InitialMessage string `json:"initial_message"`
}

// Descriptor is the registry's view of a provider.
type Descriptor struct {
	Name         string       `json:"name"`
	IsActive     bool         `json:"is_active"`
	Capabilities []Capability `json:"capabilities"`
}

func (d Descriptor) Supports(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Result is the uniform outcome of a registry invocation helper. Provider
// errors never escape as Go errors; they end up in Error.
type Result struct {
	Success   bool   `json:"success"`
	Provider  string `json:"provider,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Number    string `json:"number,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`

	// Unavailable is set when no provider could be resolved, as opposed
	// to a resolved provider failing.
	Unavailable bool `json:"-"`
}

// TimeoutError is the Error of a Result whose provider call ran out of time.
const TimeoutError = "timeout"

// Err converts a failed Result back into an error for callers that want one.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Unavailable {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, r.Error)
	}
	return fmt.Errorf("%w: %s", ErrProviderSend, r.Error)
}
