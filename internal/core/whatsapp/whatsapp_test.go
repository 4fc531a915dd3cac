package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

func newCloudProvider(t *testing.T, handler http.HandlerFunc) *CloudAPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewCloudAPIProvider(CloudAPIConfig{PhoneID: "1234", AccessToken: "token", GraphURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestCloudAPISendText(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/1234/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "15550100", body["to"])
		assert.Equal(t, "text", body["type"])

		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.ABC"}]}`))
	})

	receipt, err := p.SendWhatsAppText(context.Background(), providers.OutboundMessage{To: "+15550100", Body: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "wamid.ABC", receipt.MessageID)
	assert.Equal(t, "accepted", receipt.Status)
}

func TestCloudAPISendTemplate(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type     string `json:"type"`
			Template struct {
				Name     string `json:"name"`
				Language struct {
					Code string `json:"code"`
				} `json:"language"`
				Components []struct {
					Type       string `json:"type"`
					Parameters []struct {
						Text string `json:"text"`
					} `json:"parameters"`
				} `json:"components"`
			} `json:"template"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "template", body.Type)
		assert.Equal(t, "missed_call_v1", body.Template.Name)
		assert.Equal(t, "id", body.Template.Language.Code)
		if assert.Len(t, body.Template.Components, 1) {
			assert.Len(t, body.Template.Components[0].Parameters, 2)
			assert.Equal(t, "Acme", body.Template.Components[0].Parameters[0].Text)
		}

		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.T","message_status":"accepted"}]}`))
	})

	receipt, err := p.SendWhatsAppTemplate(context.Background(), providers.TemplateMessage{
		To:           "+15550100",
		TemplateName: "missed_call_v1",
		Language:     "id",
		Variables:    []string{"Acme", "+15550100"},
	})

	require.NoError(t, err)
	assert.Equal(t, "wamid.T", receipt.MessageID)
}

func TestCloudAPIErrorResponse(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Template name does not exist","code":132001}}`))
	})

	_, err := p.SendWhatsAppTemplate(context.Background(), providers.TemplateMessage{To: "1", TemplateName: "nope"})

	assert.EqualError(t, err, "cloud api error 132001: Template name does not exist")
}

func TestCloudAPIRejectsSMS(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := p.SendSMS(context.Background(), providers.OutboundMessage{To: "1"})

	assert.ErrorIs(t, err, providers.ErrUnsupported)
}

func TestCloudAPIPing(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v18.0/1234", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"1234"}`))
	})

	assert.NoError(t, p.Ping(context.Background()))
}

func TestUnsupportedSMSBecomesFailedResult(t *testing.T) {
	p := newCloudProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	r := providers.NewRegistry(0)
	require.NoError(t, r.Register(p))

	res := r.SendSMS(context.Background(), "whatsapp_cloud", providers.OutboundMessage{To: "1"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, providers.ErrUnsupported.Error())
}

func TestWhatsmeowOffline(t *testing.T) {
	w := NewWhatsmeowProvider("")
	ctx := context.Background()

	assert.Equal(t, "whatsmeow", w.Name())
	assert.False(t, w.IsConnected())
	assert.ErrorIs(t, w.Ping(ctx), ErrNotConnected)

	_, err := w.SendWhatsAppText(ctx, providers.OutboundMessage{To: "+15550100", Body: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = w.SendSMS(ctx, providers.OutboundMessage{})
	assert.ErrorIs(t, err, providers.ErrUnsupported)
	_, err = w.SendWhatsAppTemplate(ctx, providers.TemplateMessage{})
	assert.ErrorIs(t, err, providers.ErrUnsupported)

	w.Disconnect()
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ProviderConfig{Type: ProviderCloudAPI, CloudAPI: CloudAPIConfig{PhoneID: "1", AccessToken: "t"}})
	require.NoError(t, err)
	assert.Equal(t, "whatsapp_cloud", p.Name())

	p, err = NewProvider(ProviderConfig{Type: ProviderWhatsmeow})
	require.NoError(t, err)
	_, ok := p.(Connector)
	assert.True(t, ok)

	_, err = NewProvider(ProviderConfig{Type: ProviderCloudAPI})
	assert.Error(t, err)

	_, err = NewProvider(ProviderConfig{Type: "greenapi"})
	assert.Error(t, err)
}

func TestCleanPhoneNumber(t *testing.T) {
	for in, want := range map[string]string{
		"+15550100":               "15550100",
		"whatsapp:+15550100":      "15550100",
		"15550100@c.us":           "15550100",
		"15550100@s.whatsapp.net": "15550100",
		"15550100":                "15550100",
	} {
		assert.Equal(t, want, cleanPhoneNumber(in), in)
	}
}

func TestLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := zeroLogger{l: zerolog.New(&buf)}.Sub("store")

	l.Warnf("upgrade %d", 3)

	assert.Contains(t, buf.String(), `"module":"store"`)
	assert.Contains(t, buf.String(), `"message":"upgrade 3"`)
}
