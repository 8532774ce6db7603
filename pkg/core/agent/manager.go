// Package agent routes completion calls to a configured provider.
package agent

import (
	"context"
	"fmt"
	"sync"

	"promptsheet/pkg/core/llm"
)

// Manager holds the provider registry and the active selection. It satisfies
// llm.Provider itself, dispatching to whichever provider is active, so the
// rest of the pipeline never cares which backend is in play.
type Manager struct {
	mu        sync.RWMutex
	active    string
	providers map[string]llm.Provider
}

var _ llm.Provider = (*Manager)(nil)

// NewManager registers the given providers and marks the first one active.
// Providers register under their own Name().
func NewManager(providers ...llm.Provider) *Manager {
	m := &Manager{providers: make(map[string]llm.Provider, len(providers))}
	for _, p := range providers {
		m.providers[p.Name()] = p
		if m.active == "" {
			m.active = p.Name()
		}
	}
	return m
}

// SetGlobalProvider switches the active provider. Unknown names are rejected
// so a typo cannot silently strand the pipeline without a backend.
func (m *Manager) SetGlobalProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.active = name
	return nil
}

// ActiveProvider returns the name of the current selection.
func (m *Manager) ActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Providers lists the registered provider names.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}

func (m *Manager) Name() string { return m.ActiveProvider() }

// Generate dispatches to the active provider.
func (m *Manager) Generate(ctx context.Context, prompt string, opts llm.CallOptions) (string, error) {
	m.mu.RLock()
	p, ok := m.providers[m.active]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no active provider configured")
	}
	return p.Generate(ctx, prompt, opts)
}
