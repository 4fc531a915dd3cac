// Package vonage implements messaging and virtual numbers over the Vonage
// SMS, Messages and Numbers APIs.
package vonage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

const (
	defaultRestURL = "https://rest.nexmo.com"
	defaultAPIURL  = "https://api.nexmo.com"
)

type Config struct {
	APIKey     string
	APISecret  string
	FromNumber string

	// Overridable for tests.
	RestURL string
	APIURL  string
}

// Client is registered as the "vonage" provider.
type Client struct {
	apiKey     string
	apiSecret  string
	fromNumber string
	restURL    string
	apiURL     string
	client     *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("VONAGE_API_KEY and VONAGE_API_SECRET are required")
	}
	if cfg.RestURL == "" {
		cfg.RestURL = defaultRestURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}

	return &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		fromNumber: cfg.FromNumber,
		restURL:    strings.TrimRight(cfg.RestURL, "/"),
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "vonage" }

func (c *Client) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityMessaging, providers.CapabilityVirtualNumbers}
}

// SendSMS uses the legacy SMS API, which reports failures per message
// with HTTP 200.
func (c *Client) SendSMS(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	form := c.credentials()
	form.Set("from", msisdn(c.sender(msg.From)))
	form.Set("to", msisdn(msg.To))
	form.Set("text", msg.Body)

	var out struct {
		Messages []struct {
			Status    string `json:"status"`
			MessageID string `json:"message-id"`
			ErrorText string `json:"error-text"`
		} `json:"messages"`
	}
	if err := c.postForm(ctx, c.restURL+"/sms/json", form, &out); err != nil {
		return nil, err
	}
	if len(out.Messages) == 0 {
		return nil, fmt.Errorf("vonage returned no message status")
	}
	m := out.Messages[0]
	if m.Status != "0" {
		return nil, fmt.Errorf("vonage sms error %s: %s", m.Status, m.ErrorText)
	}
	return &providers.Receipt{MessageID: m.MessageID, Status: "submitted"}, nil
}

func (c *Client) SendWhatsAppText(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return c.sendMessage(ctx, map[string]interface{}{
		"channel":      "whatsapp",
		"message_type": "text",
		"from":         msisdn(c.sender(msg.From)),
		"to":           msisdn(msg.To),
		"text":         msg.Body,
	})
}

func (c *Client) SendWhatsAppTemplate(ctx context.Context, msg providers.TemplateMessage) (*providers.Receipt, error) {
	locale := msg.Language
	if locale == "" {
		locale = "en_US"
	}
	params := msg.Variables
	if params == nil {
		params = []string{}
	}

	return c.sendMessage(ctx, map[string]interface{}{
		"channel":      "whatsapp",
		"message_type": "template",
		"from":         msisdn(c.sender(msg.From)),
		"to":           msisdn(msg.To),
		"template": map[string]interface{}{
			"name":       msg.TemplateName,
			"parameters": params,
		},
		"whatsapp": map[string]string{
			"policy": "deterministic",
			"locale": locale,
		},
	})
}

func (c *Client) sendMessage(ctx context.Context, payload map[string]interface{}) (*providers.Receipt, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		MessageUUID string `json:"message_uuid"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &providers.Receipt{MessageID: out.MessageUUID, Status: "accepted"}, nil
}

// GenerateNumber buys the first SMS-capable number found in the country.
func (c *Client) GenerateNumber(ctx context.Context, countryCode string) (string, error) {
	country := strings.ToUpper(countryCode)
	if country == "" {
		return "", fmt.Errorf("country code is required")
	}

	query := c.credentials()
	query.Set("country", country)
	query.Set("features", "SMS")
	query.Set("size", "1")

	var found struct {
		Count   int `json:"count"`
		Numbers []struct {
			MSISDN string `json:"msisdn"`
		} `json:"numbers"`
	}
	if err := c.get(ctx, c.restURL+"/number/search?"+query.Encode(), &found); err != nil {
		return "", err
	}
	if len(found.Numbers) == 0 {
		return "", fmt.Errorf("no numbers available in %s", country)
	}

	number := found.Numbers[0].MSISDN
	form := c.credentials()
	form.Set("country", country)
	form.Set("msisdn", number)
	if err := c.numberAction(ctx, "/number/buy", form); err != nil {
		return "", err
	}

	log.Info().Str("provider", "vonage").Str("number", number).Msg("number purchased")
	return "+" + number, nil
}

// ReleaseNumber cancels a number. Vonage needs the country, so it is looked
// up from the account's numbers first.
func (c *Client) ReleaseNumber(ctx context.Context, number string) error {
	query := c.credentials()
	query.Set("pattern", msisdn(number))
	query.Set("search_pattern", "0")

	var owned struct {
		Numbers []struct {
			Country string `json:"country"`
			MSISDN  string `json:"msisdn"`
		} `json:"numbers"`
	}
	if err := c.get(ctx, c.restURL+"/account/numbers?"+query.Encode(), &owned); err != nil {
		return err
	}
	if len(owned.Numbers) == 0 {
		return fmt.Errorf("number %s is not owned by this account", number)
	}

	form := c.credentials()
	form.Set("country", owned.Numbers[0].Country)
	form.Set("msisdn", owned.Numbers[0].MSISDN)
	return c.numberAction(ctx, "/number/cancel", form)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, c.restURL+"/account/get-balance?"+c.credentials().Encode(), nil)
}

func (c *Client) numberAction(ctx context.Context, path string, form url.Values) error {
	var out struct {
		ErrorCode      string `json:"error-code"`
		ErrorCodeLabel string `json:"error-code-label"`
	}
	if err := c.postForm(ctx, c.restURL+path, form, &out); err != nil {
		return err
	}
	if out.ErrorCode != "" && out.ErrorCode != "200" {
		return fmt.Errorf("vonage error %s: %s", out.ErrorCode, out.ErrorCodeLabel)
	}
	return nil
}

func (c *Client) credentials() url.Values {
	v := url.Values{}
	v.Set("api_key", c.apiKey)
	v.Set("api_secret", c.apiSecret)
	return v
}

func (c *Client) sender(from string) string {
	if from != "" {
		return from
	}
	return c.fromNumber
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil && problem.Title != "" {
			return fmt.Errorf("vonage error (status %d): %s: %s", resp.StatusCode, problem.Title, problem.Detail)
		}
		return fmt.Errorf("vonage error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// msisdn strips the leading + and any whatsapp: prefix.
func msisdn(number string) string {
	number = strings.TrimPrefix(number, "whatsapp:")
	return strings.TrimPrefix(number, "+")
}
