package providers

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCallTimeout bounds every provider call made through the registry.
const DefaultCallTimeout = 10 * time.Second

type entry struct {
	provider Provider
	active   bool
}

// Registry maps provider names to implementations and keeps one default
// provider per capability. Build it once at startup and pass it to the
// services that need it.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	defaults map[Capability]string
	timeout  time.Duration
}

// NewRegistry creates an empty registry. A non-positive timeout falls back
// to DefaultCallTimeout.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Registry{
		entries:  make(map[string]*entry),
		defaults: make(map[Capability]string),
		timeout:  timeout,
	}
}

// Register adds a provider or replaces the one registered under the same
// name. The provider must implement every capability it declares.
func (r *Registry) Register(p Provider) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	for _, c := range p.Capabilities() {
		if !implements(p, c) {
			return fmt.Errorf("provider %s declares %s but does not implement it", name, c)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = &entry{provider: p, active: true}

	log.Info().Str("provider", name).Interface("capabilities", p.Capabilities()).Msg("provider registered")
	return nil
}

// SetDefault points the capability at a registered provider declaring it.
func (r *Registry) SetDefault(c Capability, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrProviderUnavailable, name)
	}
	if !declares(e.provider, c) {
		return fmt.Errorf("%w: %s does not support %s", ErrProviderUnavailable, name, c)
	}
	r.defaults[c] = name
	return nil
}

// Default returns the configured default provider name for a capability.
func (r *Registry) Default(c Capability) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.defaults[c]
	return name, ok
}

// SetActive flips a provider's availability.
func (r *Registry) SetActive(name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s is not registered", ErrProviderUnavailable, name)
	}
	e.active = active
	return nil
}

// Resolve picks the provider serving capability c. An explicit name is
// honored strictly. Without one, the default is used; if the default is
// inactive, the next active provider with the capability in registration
// order takes over.
func (r *Registry) Resolve(c Capability, explicitName string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if explicitName != "" {
		e, ok := r.entries[explicitName]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not registered", ErrProviderUnavailable, explicitName)
		}
		if !declares(e.provider, c) {
			return nil, fmt.Errorf("%w: %s does not support %s", ErrProviderUnavailable, explicitName, c)
		}
		if !e.active {
			return nil, fmt.Errorf("%w: %s is inactive", ErrProviderUnavailable, explicitName)
		}
		return e.provider, nil
	}

	name, ok := r.defaults[c]
	if !ok {
		return nil, fmt.Errorf("%w: no default %s provider", ErrProviderUnavailable, c)
	}
	e, ok := r.entries[name]
	if !ok || !declares(e.provider, c) {
		return nil, fmt.Errorf("%w: default %s provider %s no longer supports it", ErrProviderUnavailable, c, name)
	}
	if e.active {
		return e.provider, nil
	}

	for _, candidate := range r.order {
		if candidate == name {
			continue
		}
		if fb := r.entries[candidate]; fb.active && declares(fb.provider, c) {
			log.Warn().Str("capability", string(c)).Str("default", name).Str("fallback", candidate).
				Msg("default provider inactive, falling back")
			return fb.provider, nil
		}
	}
	return nil, fmt.Errorf("%w: default %s provider %s is inactive", ErrProviderUnavailable, c, name)
}

// Descriptors lists registered providers in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		out = append(out, Descriptor{
			Name:         name,
			IsActive:     e.active,
			Capabilities: e.provider.Capabilities(),
		})
	}
	return out
}

// Timeout is the per-call bound applied by the invocation helpers.
func (r *Registry) Timeout() time.Duration {
	return r.timeout
}

func (r *Registry) snapshot() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].provider)
	}
	return out
}

func declares(p Provider, c Capability) bool {
	for _, have := range p.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

func implements(p Provider, c Capability) bool {
	switch c {
	case CapabilityMessaging:
		_, ok := p.(Messaging)
		return ok
	case CapabilityVirtualNumbers:
		_, ok := p.(VirtualNumbers)
		return ok
	case CapabilityChatbot:
		_, ok := p.(Chatbot)
		return ok
	default:
		return false
	}
}
