package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/database/dbtest"
)

type sent struct {
	kind string
	to   string
	from string
	body string
	vars []string
	name string
}

type fakeMessenger struct {
	mu      sync.Mutex
	name    string
	sendErr error
	sent    []sent
}

func (f *fakeMessenger) Name() string { return f.name }
func (f *fakeMessenger) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityMessaging}
}

func (f *fakeMessenger) record(s sent) (*providers.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, s)
	return &providers.Receipt{MessageID: fmt.Sprintf("%s-%d", f.name, len(f.sent)), Status: "queued"}, nil
}

func (f *fakeMessenger) SendSMS(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return f.record(sent{kind: "sms", to: msg.To, from: msg.From, body: msg.Body})
}

func (f *fakeMessenger) SendWhatsAppText(ctx context.Context, msg providers.OutboundMessage) (*providers.Receipt, error) {
	return f.record(sent{kind: "whatsapp", to: msg.To, from: msg.From, body: msg.Body})
}

func (f *fakeMessenger) SendWhatsAppTemplate(ctx context.Context, msg providers.TemplateMessage) (*providers.Receipt, error) {
	return f.record(sent{kind: "whatsapp_template", to: msg.To, from: msg.From, name: msg.TemplateName, vars: msg.Variables})
}

func (f *fakeMessenger) sends() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

type fakeBot struct {
	mu     sync.Mutex
	block  bool
	err    error
	routed []providers.RouteRequest
}

func (f *fakeBot) Name() string { return "bot" }
func (f *fakeBot) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityChatbot}
}

func (f *fakeBot) RouteToBot(ctx context.Context, req providers.RouteRequest) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routed = append(f.routed, req)
	return "session-" + req.BotID, nil
}

func (f *fakeBot) DisconnectBot(ctx context.Context, sessionID string) error { return nil }

func (f *fakeBot) routes() []providers.RouteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]providers.RouteRequest(nil), f.routed...)
}

type fakeNumbers struct {
	mu       sync.Mutex
	next     int
	released []string
	err      error
}

func (f *fakeNumbers) Name() string { return "numbers" }
func (f *fakeNumbers) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityVirtualNumbers}
}

func (f *fakeNumbers) GenerateNumber(ctx context.Context, countryCode string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("+1555000%04d", f.next), nil
}

func (f *fakeNumbers) ReleaseNumber(ctx context.Context, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, number)
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) LogChange(ctx context.Context, ownerID uuid.UUID, action, entity, entityID string, oldValue, newValue interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAudit) recorded() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.actions...)
}

var errDiskFull = errors.New("disk full")

type failingLocations struct {
	repositories.LocationRepo
}

func (failingLocations) Create(ctx context.Context, location *models.Location) error {
	return errDiskFull
}

type failingCompletions struct {
	repositories.CompletionRepo
}

func (failingCompletions) Create(ctx context.Context, completion *models.TemplateCompletion) error {
	return errDiskFull
}

type failingNumbers struct {
	repositories.PhoneNumberRepo
}

func (failingNumbers) Create(ctx context.Context, number *models.PhoneNumber) error {
	return errDiskFull
}

// env wires real repositories over SQLite with fake providers behind a real
// registry.
type env struct {
	db        *gorm.DB
	ledger    *credit.Ledger
	registry  *providers.Registry
	messenger *fakeMessenger
	bot       *fakeBot
	numbers   *fakeNumbers
	audit     *recordingAudit

	locations    repositories.LocationRepo
	templates    repositories.TemplateRepo
	preferences  repositories.PreferenceRepo
	callEvents   repositories.CallEventRepo
	messages     repositories.MessageRepo
	completions  repositories.CompletionRepo
	phoneNumbers repositories.PhoneNumberRepo
}

func newEnv(t *testing.T, timeout time.Duration) *env {
	t.Helper()

	all := append(models.All(), &credit.Entry{}, &credit.Purchase{})
	db := dbtest.Open(t, all...)

	e := &env{
		db:        db,
		ledger:    credit.NewLedger(db),
		registry:  providers.NewRegistry(timeout),
		messenger: &fakeMessenger{name: "twilio"},
		bot:       &fakeBot{},
		numbers:   &fakeNumbers{},
		audit:     &recordingAudit{},

		locations:    repositories.NewLocationRepo(db),
		templates:    repositories.NewTemplateRepo(db),
		preferences:  repositories.NewPreferenceRepo(db),
		callEvents:   repositories.NewCallEventRepo(db),
		messages:     repositories.NewMessageRepo(db),
		completions:  repositories.NewCompletionRepo(db),
		phoneNumbers: repositories.NewPhoneNumberRepo(db),
	}

	require.NoError(t, e.registry.Register(e.messenger))
	require.NoError(t, e.registry.Register(e.bot))
	require.NoError(t, e.registry.Register(e.numbers))
	require.NoError(t, e.registry.SetDefault(providers.CapabilityMessaging, "twilio"))
	require.NoError(t, e.registry.SetDefault(providers.CapabilityChatbot, "bot"))
	require.NoError(t, e.registry.SetDefault(providers.CapabilityVirtualNumbers, "numbers"))
	return e
}

func (e *env) flowService() *FlowService {
	return NewFlowService(FlowDeps{
		Preferences:  e.preferences,
		CallEvents:   e.callEvents,
		Templates:    e.templates,
		Locations:    e.locations,
		PhoneNumbers: e.phoneNumbers,
		Messages:     e.messages,
		Completions:  e.completions,
		Gateway:      e.registry,
	})
}

func (e *env) templateService() *TemplateService {
	return NewTemplateService(e.templates, e.locations, e.messages, e.completions, e.registry)
}

func (e *env) location(t *testing.T, ownerID uuid.UUID, name, tz string) *models.Location {
	t.Helper()
	loc := &models.Location{OwnerID: ownerID, PlanType: credit.PlanSmall, Name: name, Address: "1 Main St", Timezone: tz}
	require.NoError(t, e.locations.Create(context.Background(), loc))
	return loc
}

func (e *env) template(t *testing.T, tmpl *models.Template) *models.Template {
	t.Helper()
	require.NoError(t, e.templates.Create(context.Background(), tmpl))
	return tmpl
}
