package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		choices := []map[string]interface{}{}
		if content != "" {
			choices = append(choices, map[string]interface{}{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test",
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateResponse(t *testing.T) {
	var body map[string]interface{}
	srv := chatServer(t, "Hi! Sorry we missed your call.", &body)

	p, err := NewProvider(&ProviderConfig{Type: ProviderGroq, APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "Groq", p.GetProviderName())

	reply, err := p.GenerateResponse(context.Background(), "You are a receptionist.", "Missed call from +15550100")

	require.NoError(t, err)
	assert.Equal(t, "Hi! Sorry we missed your call.", reply)
	assert.Equal(t, "llama-3.1-8b-instant", body["model"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestGenerateResponseWithoutChoices(t *testing.T) {
	srv := chatServer(t, "", nil)
	p := NewCompatibleProvider("DeepSeek", "test-key", srv.URL, "deepseek-chat", 0, 100)

	_, err := p.GenerateResponse(context.Background(), "sys", "hello")

	assert.EqualError(t, err, "no response from DeepSeek")
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Type: "gemini", APIKey: "k"})
	assert.Error(t, err)

	_, err = NewProvider(&ProviderConfig{Type: ProviderOpenAI})
	assert.Error(t, err)

	p, err := NewProvider(&ProviderConfig{Type: ProviderDeepSeek, APIKey: "k", Model: "deepseek-reasoner"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", p.(*CompatibleProvider).model)
}
