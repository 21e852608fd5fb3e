package profile

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/opcode"
)

// Manager holds the active engine context for a host and keeps the opcode
// registry in step with it. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	registry *opcode.Registry
	active   *Profile
	resets   int
}

// NewManager returns a Manager driving registry, starting with initial
// active. A nil registry means opcode.Default().
func NewManager(registry *opcode.Registry, initial *Profile) *Manager {
	if registry == nil {
		registry = opcode.Default()
	}
	return &Manager{registry: registry, active: initial}
}

// Active returns the active profile, or nil before the first switch.
func (m *Manager) Active() *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Context returns the active engine context. With no profile it is the zero
// Context, under which only family-neutral opcodes are available.
func (m *Manager) Context() engine.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return engine.Context{}
	}
	return m.active.Context
}

// Switch makes p the active profile. The registry is reset only when the
// engine context actually changes; it reports whether that happened.
func (m *Manager) Switch(p *Profile) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.active
	m.active = p
	if sameContext(prev, p) {
		return false
	}
	m.registry.Reset()
	m.resets++

	from, to := "none", "none"
	if prev != nil {
		from = prev.Context.String()
	}
	if p != nil {
		to = p.Context.String()
	}
	Logger().Info("switched game profile",
		zap.String("from", from),
		zap.String("to", to))
	return true
}

// SwitchContext is Switch for a bare context, e.g. an engine preset.
func (m *Manager) SwitchContext(ctx engine.Context) bool {
	return m.Switch(&Profile{Name: ctx.String(), Context: ctx})
}

// Resets returns how many times the manager has reset the registry.
func (m *Manager) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func sameContext(a, b *Profile) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Context == b.Context
}
