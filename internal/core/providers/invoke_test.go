package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSMSSuccess(t *testing.T) {
	r, twilio, _ := newMessagingRegistry(t)

	res := r.SendSMS(context.Background(), "", OutboundMessage{To: "+15550100", Body: "hi"})

	assert.True(t, res.Success)
	assert.Equal(t, "twilio", res.Provider)
	assert.Equal(t, "twilio-msg-1", res.MessageID)
	assert.Empty(t, res.Error)
	assert.NoError(t, res.Err())
	assert.Equal(t, 1, twilio.callCount())
}

func TestSendSMSProviderErrorBecomesResult(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(&fakeMessaging{name: "twilio", sendErr: errors.New("21211 invalid To")}))

	res := r.SendSMS(context.Background(), "twilio", OutboundMessage{To: "bad"})

	assert.False(t, res.Success)
	assert.Equal(t, "21211 invalid To", res.Error)
	assert.ErrorIs(t, res.Err(), ErrProviderSend)
}

func TestInvocationTimesOut(t *testing.T) {
	r := NewRegistry(50 * time.Millisecond)
	require.NoError(t, r.Register(&fakeMessaging{name: "slow", block: true}))

	start := time.Now()
	res := r.SendWhatsApp(context.Background(), "slow", OutboundMessage{To: "+15550100"})

	assert.False(t, res.Success)
	assert.Equal(t, TimeoutError, res.Error)
	assert.Less(t, time.Since(start), time.Second)
}

func TestInvocationRecoversPanic(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(&fakeMessaging{name: "flaky", panics: true}))

	res := r.SendSMS(context.Background(), "flaky", OutboundMessage{To: "+15550100"})

	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, "provider panic"))
}

func TestInvocationWithUnavailableProvider(t *testing.T) {
	r := NewRegistry(time.Second)

	res := r.RouteToBot(context.Background(), "", RouteRequest{BotID: "b1"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, ErrProviderUnavailable.Error())
	assert.ErrorIs(t, res.Err(), ErrProviderUnavailable)
}

func TestVirtualNumberAndChatbotHelpers(t *testing.T) {
	r := NewRegistry(time.Second)
	require.NoError(t, r.Register(&fakeNumbers{name: "twilio"}))
	require.NoError(t, r.Register(&fakeBot{name: "llm"}))
	require.NoError(t, r.SetDefault(CapabilityVirtualNumbers, "twilio"))
	require.NoError(t, r.SetDefault(CapabilityChatbot, "llm"))
	ctx := context.Background()

	res := r.GenerateVirtualNumber(ctx, "", "US")
	require.True(t, res.Success)
	assert.Equal(t, "+15550001111", res.Number)

	res = r.GenerateVirtualNumber(ctx, "", "")
	assert.False(t, res.Success)

	res = r.ReleaseVirtualNumber(ctx, "", "+15550001111")
	assert.True(t, res.Success)

	res = r.RouteToBot(ctx, "", RouteRequest{BotID: "b1"})
	require.True(t, res.Success)
	assert.Equal(t, "session-b1", res.SessionID)

	res = r.DisconnectBot(ctx, "llm", "session-b1")
	assert.True(t, res.Success)
}

func TestSendWhatsAppTemplate(t *testing.T) {
	r, _, vonage := newMessagingRegistry(t)

	res := r.SendWhatsAppTemplate(context.Background(), "vonage", TemplateMessage{
		To:           "+15550100",
		TemplateName: "missed_call_v1",
		Variables:    []string{"Acme"},
	})

	assert.True(t, res.Success)
	assert.Equal(t, "vonage", res.Provider)
	assert.Equal(t, 1, vonage.callCount())
}
