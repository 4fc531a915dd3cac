package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/metrics"
)

// SendSMS resolves a messaging provider and sends a text message.
func (r *Registry) SendSMS(ctx context.Context, providerName string, msg OutboundMessage) Result {
	p, err := r.Resolve(CapabilityMessaging, providerName)
	if err != nil {
		return unavailable("send_sms", err)
	}
	m := p.(Messaging)
	return r.invoke(ctx, p.Name(), "send_sms", func(ctx context.Context) (Result, error) {
		receipt, err := m.SendSMS(ctx, msg)
		return receiptResult(receipt), err
	})
}

// SendWhatsApp sends a free-form WhatsApp text message.
func (r *Registry) SendWhatsApp(ctx context.Context, providerName string, msg OutboundMessage) Result {
	p, err := r.Resolve(CapabilityMessaging, providerName)
	if err != nil {
		return unavailable("send_whatsapp", err)
	}
	m := p.(Messaging)
	return r.invoke(ctx, p.Name(), "send_whatsapp", func(ctx context.Context) (Result, error) {
		receipt, err := m.SendWhatsAppText(ctx, msg)
		return receiptResult(receipt), err
	})
}

// SendWhatsAppTemplate sends a pre-approved WhatsApp template.
func (r *Registry) SendWhatsAppTemplate(ctx context.Context, providerName string, msg TemplateMessage) Result {
	p, err := r.Resolve(CapabilityMessaging, providerName)
	if err != nil {
		return unavailable("send_whatsapp_template", err)
	}
	m := p.(Messaging)
	return r.invoke(ctx, p.Name(), "send_whatsapp_template", func(ctx context.Context) (Result, error) {
		receipt, err := m.SendWhatsAppTemplate(ctx, msg)
		return receiptResult(receipt), err
	})
}

// GenerateVirtualNumber provisions a new number in the given country.
func (r *Registry) GenerateVirtualNumber(ctx context.Context, providerName, countryCode string) Result {
	p, err := r.Resolve(CapabilityVirtualNumbers, providerName)
	if err != nil {
		return unavailable("generate_number", err)
	}
	v := p.(VirtualNumbers)
	return r.invoke(ctx, p.Name(), "generate_number", func(ctx context.Context) (Result, error) {
		number, err := v.GenerateNumber(ctx, countryCode)
		return Result{Number: number}, err
	})
}

// ReleaseVirtualNumber hands a number back to its provider.
func (r *Registry) ReleaseVirtualNumber(ctx context.Context, providerName, number string) Result {
	p, err := r.Resolve(CapabilityVirtualNumbers, providerName)
	if err != nil {
		return unavailable("release_number", err)
	}
	v := p.(VirtualNumbers)
	return r.invoke(ctx, p.Name(), "release_number", func(ctx context.Context) (Result, error) {
		return Result{Number: number}, v.ReleaseNumber(ctx, number)
	})
}

// RouteToBot opens a chatbot session for a contact.
func (r *Registry) RouteToBot(ctx context.Context, providerName string, req RouteRequest) Result {
	p, err := r.Resolve(CapabilityChatbot, providerName)
	if err != nil {
		return unavailable("route_to_bot", err)
	}
	b := p.(Chatbot)
	return r.invoke(ctx, p.Name(), "route_to_bot", func(ctx context.Context) (Result, error) {
		sessionID, err := b.RouteToBot(ctx, req)
		return Result{SessionID: sessionID}, err
	})
}

// DisconnectBot closes a chatbot session.
func (r *Registry) DisconnectBot(ctx context.Context, providerName, sessionID string) Result {
	p, err := r.Resolve(CapabilityChatbot, providerName)
	if err != nil {
		return unavailable("disconnect_bot", err)
	}
	b := p.(Chatbot)
	return r.invoke(ctx, p.Name(), "disconnect_bot", func(ctx context.Context) (Result, error) {
		return Result{SessionID: sessionID}, b.DisconnectBot(ctx, sessionID)
	})
}

// invoke runs call under the registry timeout. The call runs on its own
// goroutine so a provider that ignores ctx still cannot hold the caller
// past the deadline. Panics are converted into failed results.
func (r *Registry) invoke(ctx context.Context, provider, operation string, call func(context.Context) (Result, error)) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- Result{Error: fmt.Sprintf("provider panic: %v", rec)}
			}
		}()

		res, err := call(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				done <- Result{Error: TimeoutError}
				return
			}
			done <- Result{Error: err.Error()}
			return
		}
		res.Success = true
		done <- res
	}()

	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res = Result{Error: TimeoutError}
		} else {
			res = Result{Error: ctx.Err().Error()}
		}
	}
	res.Provider = provider

	metrics.ProviderCallDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	outcome := metrics.OutcomeSuccess
	switch {
	case res.Error == TimeoutError:
		outcome = metrics.OutcomeTimeout
	case !res.Success:
		outcome = metrics.OutcomeFailure
	}
	metrics.ProviderCalls.WithLabelValues(provider, operation, outcome).Inc()

	if !res.Success {
		log.Warn().Str("provider", provider).Str("operation", operation).Str("error", res.Error).Msg("provider call failed")
	}
	return res
}

func unavailable(operation string, err error) Result {
	metrics.ProviderCalls.WithLabelValues("", operation, metrics.OutcomeUnavailable).Inc()
	return Result{Error: err.Error(), Unavailable: true}
}

func receiptResult(r *Receipt) Result {
	if r == nil {
		return Result{}
	}
	return Result{MessageID: r.MessageID, Status: r.Status}
}
