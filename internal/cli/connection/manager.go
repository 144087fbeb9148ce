package connection

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultProfile is the profile used when none is selected.
const DefaultProfile = "default"

// Profile is a named backend endpoint. Tokens and snapshots are scoped
// per profile.
type Profile struct {
	Name    string
	BaseURL string
}

// Manager keeps the known backend profiles and the selected one.
type Manager struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	current  *Profile
}

// NewManager creates a manager over profiles (name to base URL).
func NewManager(profiles map[string]string) *Manager {
	m := &Manager{profiles: make(map[string]Profile, len(profiles))}
	for name, baseURL := range profiles {
		m.profiles[name] = Profile{Name: name, BaseURL: NormalizeBaseURL(baseURL)}
	}
	return m
}

// Add registers or replaces a profile.
func (m *Manager) Add(name, baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[name] = Profile{Name: name, BaseURL: NormalizeBaseURL(baseURL)}
}

// Connect selects the named profile.
func (m *Manager) Connect(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	m.current = &p
	return nil
}

// Disconnect clears the selection.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Current returns the selected profile, or nil.
func (m *Manager) Current() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	p := *m.current
	return &p
}

// IsConnected returns true if a profile is selected.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// List returns all profiles sorted by name.
func (m *Manager) List() []Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
