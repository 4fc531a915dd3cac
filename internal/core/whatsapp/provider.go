// Package whatsapp provides WhatsApp-only messaging providers: the Meta
// Cloud API and a whatsmeow linked device.
package whatsapp

import (
	"context"
	"fmt"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

type ProviderType string

const (
	ProviderCloudAPI  ProviderType = "cloud_api"
	ProviderWhatsmeow ProviderType = "whatsmeow"
)

type ProviderConfig struct {
	Type ProviderType

	// Cloud API
	CloudAPI CloudAPIConfig

	// whatsmeow device store; empty means a local SQLite file
	StoreURL string
}

// Connector is implemented by providers holding a long-lived session.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// NewProvider builds the configured WhatsApp provider. Providers that also
// implement Connector must be connected before registering.
func NewProvider(cfg ProviderConfig) (providers.Messaging, error) {
	switch cfg.Type {
	case ProviderCloudAPI:
		return NewCloudAPIProvider(cfg.CloudAPI)
	case ProviderWhatsmeow:
		return NewWhatsmeowProvider(cfg.StoreURL), nil
	default:
		return nil, fmt.Errorf("unknown whatsapp provider type: %s", cfg.Type)
	}
}

// cleanPhoneNumber strips JID suffixes and the leading + so both APIs get
// bare digits.
func cleanPhoneNumber(phone string) string {
	for _, suffix := range []string{"@c.us", "@s.whatsapp.net"} {
		if len(phone) > len(suffix) && phone[len(phone)-len(suffix):] == suffix {
			phone = phone[:len(phone)-len(suffix)]
			break
		}
	}
	if len(phone) > 9 && phone[:9] == "whatsapp:" {
		phone = phone[9:]
	}
	if len(phone) > 0 && phone[0] == '+' {
		phone = phone[1:]
	}
	return phone
}
