package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

const defaultGraphURL = "https://graph.facebook.com"

// CloudAPIProvider implements the WhatsApp Cloud API (official Business API).
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type CloudAPIProvider struct {
	baseURL     string
	phoneID     string
	accessToken string
	client      *http.Client
}

type CloudAPIConfig struct {
	PhoneID     string `json:"phone_id"`     // WhatsApp Business phone number ID
	AccessToken string `json:"access_token"` // Meta Business access token
	APIVersion  string `json:"api_version"`  // default v18.0
	GraphURL    string `json:"graph_url"`
}

func NewCloudAPIProvider(config CloudAPIConfig) (*CloudAPIProvider, error) {
	if config.PhoneID == "" {
		return nil, fmt.Errorf("phone_id is required")
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("access_token is required")
	}
	if config.APIVersion == "" {
		config.APIVersion = "v18.0"
	}
	if config.GraphURL == "" {
		config.GraphURL = defaultGraphURL
	}

	return &CloudAPIProvider{
		baseURL:     fmt.Sprintf("%s/%s/%s", strings.TrimRight(config.GraphURL, "/"), config.APIVersion, config.PhoneID),
		phoneID:     config.PhoneID,
		accessToken: config.AccessToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *CloudAPIProvider) Name() string { return "whatsapp_cloud" }

func (p *CloudAPIProvider) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityMessaging}
}

// SendSMS is not available on the Cloud API.
func (p *CloudAPIProvider) SendSMS(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return nil, fmt.Errorf("%w: whatsapp cloud api cannot send sms", providers.ErrUnsupported)
}

func (p *CloudAPIProvider) SendWhatsAppText(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return p.sendMessage(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(msg.To),
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        msg.Body,
		},
	})
}

func (p *CloudAPIProvider) SendWhatsAppTemplate(ctx context.Context, msg providers.TemplateMessage) (*providers.Receipt, error) {
	lang := msg.Language
	if lang == "" {
		lang = "en_US"
	}

	template := map[string]interface{}{
		"name":     msg.TemplateName,
		"language": map[string]string{"code": lang},
	}
	if len(msg.Variables) > 0 {
		params := make([]map[string]string, 0, len(msg.Variables))
		for _, v := range msg.Variables {
			params = append(params, map[string]string{"type": "text", "text": v})
		}
		template["components"] = []map[string]interface{}{
			{"type": "body", "parameters": params},
		}
	}

	return p.sendMessage(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                cleanPhoneNumber(msg.To),
		"type":              "template",
		"template":          template,
	})
}

// Ping reads the phone number object, which fails on a revoked token.
func (p *CloudAPIProvider) Ping(ctx context.Context) error {
	_, err := p.do(ctx, http.MethodGet, p.baseURL, nil)
	return err
}

func (p *CloudAPIProvider) sendMessage(ctx context.Context, payload interface{}) (*providers.Receipt, error) {
	body, err := p.do(ctx, http.MethodPost, p.baseURL+"/messages", payload)
	if err != nil {
		return nil, err
	}

	var out struct {
		Messages []struct {
			ID            string `json:"id"`
			MessageStatus string `json:"message_status"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("cloud api returned no message id")
	}

	status := out.Messages[0].MessageStatus
	if status == "" {
		status = "accepted"
	}
	log.Debug().Str("provider", p.Name()).Str("message_id", out.Messages[0].ID).Msg("message accepted")
	return &providers.Receipt{MessageID: out.Messages[0].ID, Status: status}, nil
}

func (p *CloudAPIProvider) do(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("cloud api error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
