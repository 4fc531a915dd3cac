package vonage

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

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "key", APISecret: "secret", FromNumber: "+15550001111", RestURL: srv.URL, APIURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestSendSMS(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sms/json", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.PostForm.Get("api_key"))
		assert.Equal(t, "15550001111", r.PostForm.Get("from"))
		assert.Equal(t, "15550100", r.PostForm.Get("to"))
		_, _ = w.Write([]byte(`{"message-count":"1","messages":[{"status":"0","message-id":"0A000001"}]}`))
	})
	c := newTestClient(t, mux)

	receipt, err := c.SendSMS(context.Background(), providers.OutboundMessage{To: "+15550100", Body: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "0A000001", receipt.MessageID)
}

func TestSendSMSRejectedWithOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sms/json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[{"status":"2","error-text":"Missing to param"}]}`))
	})
	c := newTestClient(t, mux)

	_, err := c.SendSMS(context.Background(), providers.OutboundMessage{Body: "hi"})

	assert.EqualError(t, err, "vonage sms error 2: Missing to param")
}

func TestSendWhatsAppTemplate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "template", body["message_type"])
		assert.Equal(t, "15550100", body["to"])
		tmpl := body["template"].(map[string]interface{})
		assert.Equal(t, "missed_call_v1", tmpl["name"])
		assert.Equal(t, []interface{}{"Acme"}, tmpl["parameters"])

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message_uuid":"aaaa-bbbb"}`))
	})
	c := newTestClient(t, mux)

	receipt, err := c.SendWhatsAppTemplate(context.Background(), providers.TemplateMessage{
		To:           "+15550100",
		TemplateName: "missed_call_v1",
		Variables:    []string{"Acme"},
	})

	require.NoError(t, err)
	assert.Equal(t, "aaaa-bbbb", receipt.MessageID)
}

func TestSendWhatsAppTextProblemResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"title":"Invalid sender","detail":"The from parameter is invalid."}`))
	})
	c := newTestClient(t, mux)

	_, err := c.SendWhatsAppText(context.Background(), providers.OutboundMessage{To: "+15550100", Body: "hi"})

	assert.EqualError(t, err, "vonage error (status 422): Invalid sender: The from parameter is invalid.")
}

func TestGenerateAndReleaseNumber(t *testing.T) {
	var cancelled bool
	mux := http.NewServeMux()
	mux.HandleFunc("/number/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GB", r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(`{"count":1,"numbers":[{"country":"GB","msisdn":"447700900000"}]}`))
	})
	mux.HandleFunc("/number/buy", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "447700900000", r.PostForm.Get("msisdn"))
		_, _ = w.Write([]byte(`{"error-code":"200","error-code-label":"success"}`))
	})
	mux.HandleFunc("/account/numbers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "447700900000", r.URL.Query().Get("pattern"))
		_, _ = w.Write([]byte(`{"count":1,"numbers":[{"country":"GB","msisdn":"447700900000"}]}`))
	})
	mux.HandleFunc("/number/cancel", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "GB", r.PostForm.Get("country"))
		cancelled = true
		_, _ = w.Write([]byte(`{"error-code":"200","error-code-label":"success"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	number, err := c.GenerateNumber(ctx, "gb")
	require.NoError(t, err)
	assert.Equal(t, "+447700900000", number)

	require.NoError(t, c.ReleaseNumber(ctx, number))
	assert.True(t, cancelled)
}

func TestBuyFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/number/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"numbers":[{"msisdn":"447700900000"}]}`))
	})
	mux.HandleFunc("/number/buy", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error-code":"420","error-code-label":"method failed"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.GenerateNumber(context.Background(), "GB")

	assert.EqualError(t, err, "vonage error 420: method failed")
}

func TestPing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/get-balance", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_secret"))
		_, _ = w.Write([]byte(`{"value":10.5,"autoReload":false}`))
	})
	c := newTestClient(t, mux)

	assert.NoError(t, c.Ping(context.Background()))
}
