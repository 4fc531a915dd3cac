// Package chatbot holds the chatbot providers registered under the
// chatbot capability.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

// DeliverFunc sends a bot reply to the contact.
type DeliverFunc func(ctx context.Context, from, to, body string) error

const defaultSystemPrompt = "You are the virtual receptionist of a local business. " +
	"A customer just called and nobody could answer. Write a short, friendly WhatsApp " +
	"message apologising for the missed call and asking how you can help. Reply in the " +
	"customer's language when it is obvious, otherwise in English."

type session struct {
	botID     string
	ownerID   string
	contact   string
	startedAt time.Time
}

// LLMBot opens a conversation by generating a first reply with an LLM and
// delivering it to the caller. Sessions live in memory.
type LLMBot struct {
	llm          llm.Provider
	deliver      DeliverFunc
	systemPrompt string

	mu       sync.Mutex
	sessions map[string]session
}

func NewLLMBot(provider llm.Provider, deliver DeliverFunc, systemPrompt string) *LLMBot {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &LLMBot{
		llm:          provider,
		deliver:      deliver,
		systemPrompt: systemPrompt,
		sessions:     make(map[string]session),
	}
}

func (b *LLMBot) Name() string { return "llm" }

func (b *LLMBot) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityChatbot}
}

func (b *LLMBot) RouteToBot(ctx context.Context, req providers.RouteRequest) (string, error) {
	if strings.TrimSpace(req.Contact) == "" {
		return "", fmt.Errorf("contact is required")
	}

	reply, err := b.llm.GenerateResponse(ctx, b.systemPrompt, req.InitialMessage)
	if err != nil {
		return "", fmt.Errorf("failed to generate opening message: %w", err)
	}

	if err := b.deliver(ctx, req.From, req.Contact, reply); err != nil {
		return "", fmt.Errorf("failed to deliver opening message: %w", err)
	}

	id := uuid.New().String()
	b.mu.Lock()
	b.sessions[id] = session{
		botID:     req.BotID,
		ownerID:   req.OwnerID,
		contact:   req.Contact,
		startedAt: time.Now(),
	}
	b.mu.Unlock()

	log.Info().
		Str("session_id", id).
		Str("bot_id", req.BotID).
		Str("llm", b.llm.GetProviderName()).
		Msg("chatbot session started")
	return id, nil
}

func (b *LLMBot) DisconnectBot(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sessions[sessionID]; !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	delete(b.sessions, sessionID)
	return nil
}

// ActiveSessions returns the number of open sessions.
func (b *LLMBot) ActiveSessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}
