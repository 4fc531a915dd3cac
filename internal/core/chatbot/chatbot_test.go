package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.reply, s.err
}

func (s stubLLM) GetProviderName() string { return "stub" }

func TestLLMBotRoutesAndDelivers(t *testing.T) {
	var delivered []string
	bot := NewLLMBot(stubLLM{reply: "Hi, how can we help?"}, func(ctx context.Context, from, to, body string) error {
		delivered = append(delivered, from, to, body)
		return nil
	}, "")

	sessionID, err := bot.RouteToBot(context.Background(), providers.RouteRequest{
		BotID:          "b1",
		Contact:        "+15550100",
		From:           "+15550009999",
		InitialMessage: "Missed call from +15550100",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, []string{"+15550009999", "+15550100", "Hi, how can we help?"}, delivered)
	assert.Equal(t, 1, bot.ActiveSessions())

	require.NoError(t, bot.DisconnectBot(context.Background(), sessionID))
	assert.Error(t, bot.DisconnectBot(context.Background(), sessionID))
	assert.Zero(t, bot.ActiveSessions())
}

func TestLLMBotFailures(t *testing.T) {
	noop := func(ctx context.Context, from, to, body string) error { return nil }

	_, err := NewLLMBot(stubLLM{err: errors.New("rate limited")}, noop, "").
		RouteToBot(context.Background(), providers.RouteRequest{Contact: "+15550100"})
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewLLMBot(stubLLM{reply: "hi"}, func(ctx context.Context, from, to, body string) error {
		return errors.New("no messaging provider")
	}, "").RouteToBot(context.Background(), providers.RouteRequest{Contact: "+15550100"})
	assert.ErrorContains(t, err, "no messaging provider")

	_, err = NewLLMBot(stubLLM{reply: "hi"}, noop, "").RouteToBot(context.Background(), providers.RouteRequest{})
	assert.Error(t, err)
}

func TestWebhookBot(t *testing.T) {
	var routed providers.RouteRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&routed))
		_, _ = w.Write([]byte(`{"session_id":"s-42"}`))
	})
	mux.HandleFunc("/sessions/s-42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	bot := NewWebhookBot(srv.URL+"/", "secret")
	ctx := context.Background()

	id, err := bot.RouteToBot(ctx, providers.RouteRequest{BotID: "b1", OwnerID: "o1", Contact: "+15550100"})
	require.NoError(t, err)
	assert.Equal(t, "s-42", id)
	assert.Equal(t, "b1", routed.BotID)
	assert.Equal(t, "+15550100", routed.Contact)

	assert.NoError(t, bot.DisconnectBot(ctx, "s-42"))

	err = bot.Ping(ctx)
	assert.ErrorContains(t, err, "status 503")
}
