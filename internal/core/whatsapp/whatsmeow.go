package whatsapp

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image/png"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

// ErrNotConnected is returned while the linked device is offline or not
// paired yet.
var ErrNotConnected = errors.New("whatsmeow client not connected")

// WhatsmeowProvider sends WhatsApp text messages as a linked device. It
// cannot send SMS or approved templates.
type WhatsmeowProvider struct {
	storeURL string

	mu        sync.RWMutex
	container *sqlstore.Container
	client    *whatsmeow.Client
}

func NewWhatsmeowProvider(storeURL string) *WhatsmeowProvider {
	return &WhatsmeowProvider{storeURL: storeURL}
}

func (w *WhatsmeowProvider) Name() string { return "whatsmeow" }

func (w *WhatsmeowProvider) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityMessaging}
}

func (w *WhatsmeowProvider) initStore(ctx context.Context) (*sqlstore.Container, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.container != nil {
		return w.container, nil
	}

	dbLog := newLogger("whatsmeow-store")

	if w.storeURL != "" {
		log.Info().Msg("🌐 Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		w.container = container
		return container, nil
	}

	log.Info().Msg("💾 Using local SQLite store (store.db)")
	rawDB, err := sql.Open("sqlite", "file:store.db?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}
	w.container = container
	return container, nil
}

// Connect reconnects a paired device. An unpaired device stays offline
// until it is linked through GenerateQR.
func (w *WhatsmeowProvider) Connect(ctx context.Context) error {
	container, err := w.initStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, newLogger("whatsmeow-client"))
	if client.Store.ID == nil {
		log.Warn().Msg("⚠️ WhatsApp device not paired, scan the QR from GET /whatsapp/qr")
		return nil
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	w.mu.Lock()
	w.client = client
	w.mu.Unlock()

	log.Info().Str("jid", client.Store.ID.String()).Msg("✅ Reconnected to WhatsApp")
	return nil
}

func (w *WhatsmeowProvider) Disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Disconnect()
		w.client = nil
		log.Info().Msg("🔌 Whatsmeow client disconnected")
	}
}

func (w *WhatsmeowProvider) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.client != nil && w.client.IsConnected()
}

func (w *WhatsmeowProvider) SendSMS(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return nil, fmt.Errorf("%w: whatsmeow cannot send sms", providers.ErrUnsupported)
}

func (w *WhatsmeowProvider) SendWhatsAppTemplate(ctx context.Context, msg providers.TemplateMessage) (*providers.Receipt, error) {
	return nil, fmt.Errorf("%w: whatsmeow cannot send approved templates", providers.ErrUnsupported)
}

func (w *WhatsmeowProvider) SendWhatsAppText(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	w.mu.RLock()
	client := w.client
	w.mu.RUnlock()
	if client == nil || !client.IsConnected() {
		return nil, ErrNotConnected
	}

	jid := types.NewJID(cleanPhoneNumber(msg.To), types.DefaultUserServer)
	resp, err := client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(msg.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &providers.Receipt{MessageID: string(resp.ID), Status: "sent"}, nil
}

func (w *WhatsmeowProvider) Ping(ctx context.Context) error {
	if !w.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// GenerateQR starts a pairing session and returns the first QR code as PNG.
// On successful scan the paired client replaces the current one.
func (w *WhatsmeowProvider) GenerateQR(ctx context.Context) ([]byte, error) {
	container, err := w.initStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if deviceStore.ID != nil {
		return nil, fmt.Errorf("device already paired as %s", deviceStore.ID.String())
	}

	client := whatsmeow.NewClient(deviceStore, newLogger("whatsmeow-pairing"))
	// The pairing session outlives the HTTP request that asked for it.
	qrChan, err := client.GetQRChannel(context.WithoutCancel(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to open QR channel: %w", err)
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			qr, err := encodeQR(evt.Code)
			if err != nil {
				client.Disconnect()
				return nil, err
			}
			go w.awaitPairing(client, qrChan)
			return qr, nil
		case "timeout", "error":
			client.Disconnect()
			return nil, fmt.Errorf("QR generation failed: %s", evt.Event)
		}
	}

	return nil, fmt.Errorf("no QR generated")
}

func (w *WhatsmeowProvider) awaitPairing(client *whatsmeow.Client, qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "success":
			w.mu.Lock()
			if w.client != nil {
				w.client.Disconnect()
			}
			w.client = client
			w.mu.Unlock()
			log.Info().Msg("✅ WhatsApp device paired")
			return
		case "timeout", "error":
			client.Disconnect()
			log.Warn().Str("event", evt.Event).Msg("WhatsApp pairing ended")
			return
		}
	}
}

// StartKeepAlive sends an available presence every interval until ctx is
// done.
func (w *WhatsmeowProvider) StartKeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("🔄 Keep-alive started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("🛑 Keep-alive stopped")
			return
		case <-ticker.C:
			w.mu.RLock()
			client := w.client
			w.mu.RUnlock()
			if client == nil || !client.IsConnected() {
				continue
			}
			if err := client.SendPresence(ctx, types.PresenceAvailable); err != nil {
				log.Warn().Err(err).Msg("⚠️ Keep-alive ping failed")
			}
		}
	}
}

func encodeQR(code string) ([]byte, error) {
	img, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image(256)); err != nil {
		return nil, fmt.Errorf("failed to encode QR png: %w", err)
	}
	return buf.Bytes(), nil
}
