package twilio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{AccountSID: "AC123", AuthToken: "token", FromNumber: "+15550001111", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestSendSMS(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)
		assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "+15550100", r.PostForm.Get("To"))
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "Sorry we missed you", r.PostForm.Get("Body"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	})

	receipt, err := c.SendSMS(context.Background(), providers.OutboundMessage{To: "+15550100", Body: "Sorry we missed you"})

	require.NoError(t, err)
	assert.Equal(t, "SM1", receipt.MessageID)
	assert.Equal(t, "queued", receipt.Status)
}

func TestSendWhatsAppTemplate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+15550100", r.PostForm.Get("To"))
		assert.Equal(t, "whatsapp:+15550002222", r.PostForm.Get("From"))
		assert.Equal(t, "HX123", r.PostForm.Get("ContentSid"))

		var vars map[string]string
		assert.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("ContentVariables")), &vars))
		assert.Equal(t, map[string]string{"1": "Acme", "2": "17:30"}, vars)
		_, _ = w.Write([]byte(`{"sid":"SM2","status":"queued"}`))
	})

	receipt, err := c.SendWhatsAppTemplate(context.Background(), providers.TemplateMessage{
		From:         "+15550002222",
		To:           "+15550100",
		TemplateName: "HX123",
		Variables:    []string{"Acme", "17:30"},
	})

	require.NoError(t, err)
	assert.Equal(t, "SM2", receipt.MessageID)
}

func TestSendWhatsAppTextKeepsPrefixedAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+15550100", r.PostForm.Get("To"))
		_, _ = w.Write([]byte(`{"sid":"SM3","status":"queued"}`))
	})

	_, err := c.SendWhatsAppText(context.Background(), providers.OutboundMessage{To: "whatsapp:+15550100", Body: "hi"})

	assert.NoError(t, err)
}

func TestAPIErrorIsSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	})

	_, err := c.SendSMS(context.Background(), providers.OutboundMessage{To: "bad"})

	assert.EqualError(t, err, "twilio error 21211: The 'To' number is not a valid phone number.")
}

func TestGenerateAndReleaseNumber(t *testing.T) {
	var deleted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/Accounts/AC123/AvailablePhoneNumbers/US/Local.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("PageSize"))
		_, _ = w.Write([]byte(`{"available_phone_numbers":[{"phone_number":"+15557654321"}]}`))
	})
	mux.HandleFunc("/Accounts/AC123/IncomingPhoneNumbers.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "+15557654321", r.PostForm.Get("PhoneNumber"))
			_, _ = w.Write([]byte(`{"sid":"PN1","phone_number":"+15557654321"}`))
			return
		}
		assert.Equal(t, "+15557654321", r.URL.Query().Get("PhoneNumber"))
		_, _ = w.Write([]byte(`{"incoming_phone_numbers":[{"sid":"PN1"}]}`))
	})
	mux.HandleFunc("/Accounts/AC123/IncomingPhoneNumbers/PN1.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux.ServeHTTP)
	ctx := context.Background()

	number, err := c.GenerateNumber(ctx, "us")
	require.NoError(t, err)
	assert.Equal(t, "+15557654321", number)

	require.NoError(t, c.ReleaseNumber(ctx, number))
	assert.True(t, deleted)
}

func TestGenerateNumberWithoutInventory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"available_phone_numbers":[]}`))
	})

	_, err := c.GenerateNumber(context.Background(), "GB")

	assert.ErrorContains(t, err, "no numbers available")
}

func TestPingAndRegistration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Accounts/AC123.json", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":20003,"message":"Authenticate"}`))
	})

	assert.EqualError(t, c.Ping(context.Background()), "twilio error 20003: Authenticate")

	r := providers.NewRegistry(0)
	require.NoError(t, r.Register(c))
	p, err := r.Resolve(providers.CapabilityVirtualNumbers, "twilio")
	require.NoError(t, err)
	assert.Equal(t, "twilio", p.Name())
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{AccountSID: "AC123"})
	assert.Error(t, err)
}
