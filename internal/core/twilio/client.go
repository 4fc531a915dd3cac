// Package twilio implements messaging and virtual numbers over the Twilio
// REST API.
// Documentation: https://www.twilio.com/docs/usage/api
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string // default sender when a message carries none
	BaseURL    string
}

// Client is registered as the "twilio" provider.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	client     *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "twilio" }

func (c *Client) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityMessaging, providers.CapabilityVirtualNumbers}
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (c *Client) SendSMS(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", c.sender(msg.From))
	form.Set("Body", msg.Body)
	return c.sendMessage(ctx, form)
}

func (c *Client) SendWhatsAppText(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	form := url.Values{}
	form.Set("To", whatsAppAddress(msg.To))
	form.Set("From", whatsAppAddress(c.sender(msg.From)))
	form.Set("Body", msg.Body)
	return c.sendMessage(ctx, form)
}

// SendWhatsAppTemplate sends a Content API template. TemplateName is the
// content SID (HX...); variables are numbered from 1.
func (c *Client) SendWhatsAppTemplate(ctx context.Context, msg providers.TemplateMessage) (*providers.Receipt, error) {
	vars := make(map[string]string, len(msg.Variables))
	for i, v := range msg.Variables {
		vars[strconv.Itoa(i+1)] = v
	}
	encoded, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content variables: %w", err)
	}

	form := url.Values{}
	form.Set("To", whatsAppAddress(msg.To))
	form.Set("From", whatsAppAddress(c.sender(msg.From)))
	form.Set("ContentSid", msg.TemplateName)
	form.Set("ContentVariables", string(encoded))
	return c.sendMessage(ctx, form)
}

func (c *Client) sendMessage(ctx context.Context, form url.Values) (*providers.Receipt, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, c.accountPath("/Messages.json"), form, &out); err != nil {
		return nil, err
	}
	return &providers.Receipt{MessageID: out.SID, Status: out.Status}, nil
}

// GenerateNumber buys the first available local number in the country.
func (c *Client) GenerateNumber(ctx context.Context, countryCode string) (string, error) {
	if countryCode == "" {
		return "", fmt.Errorf("country code is required")
	}

	var available struct {
		Numbers []struct {
			PhoneNumber string `json:"phone_number"`
		} `json:"available_phone_numbers"`
	}
	search := c.accountPath("/AvailablePhoneNumbers/"+url.PathEscape(strings.ToUpper(countryCode))+"/Local.json") + "?PageSize=1&SmsEnabled=true"
	if err := c.do(ctx, http.MethodGet, search, nil, &available); err != nil {
		return "", err
	}
	if len(available.Numbers) == 0 {
		return "", fmt.Errorf("no numbers available in %s", countryCode)
	}

	form := url.Values{}
	form.Set("PhoneNumber", available.Numbers[0].PhoneNumber)
	var bought struct {
		SID         string `json:"sid"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.do(ctx, http.MethodPost, c.accountPath("/IncomingPhoneNumbers.json"), form, &bought); err != nil {
		return "", err
	}

	log.Info().Str("provider", "twilio").Str("number", bought.PhoneNumber).Msg("number purchased")
	return bought.PhoneNumber, nil
}

func (c *Client) ReleaseNumber(ctx context.Context, number string) error {
	var owned struct {
		Numbers []struct {
			SID string `json:"sid"`
		} `json:"incoming_phone_numbers"`
	}
	lookup := c.accountPath("/IncomingPhoneNumbers.json") + "?PhoneNumber=" + url.QueryEscape(number)
	if err := c.do(ctx, http.MethodGet, lookup, nil, &owned); err != nil {
		return err
	}
	if len(owned.Numbers) == 0 {
		return fmt.Errorf("number %s is not owned by this account", number)
	}

	return c.do(ctx, http.MethodDelete, c.accountPath("/IncomingPhoneNumbers/"+owned.Numbers[0].SID+".json"), nil, nil)
}

// Ping fetches the account resource, which fails fast on bad credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.accountPath(".json"), nil, nil)
}

func (c *Client) sender(from string) string {
	if from != "" {
		return from
	}
	return c.fromNumber
}

func (c *Client) accountPath(suffix string) string {
	return "/Accounts/" + c.accountSID + suffix
}

// apiError is Twilio's error body.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("twilio error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("twilio error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
