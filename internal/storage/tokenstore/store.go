// Package tokenstore owns the session tokens.
//
// Store is the only component that reads or writes the access and refresh
// tokens. It performs no validation of token contents; callers decide what a
// token means. The storage medium is abstracted behind Backend.
package tokenstore

import (
	"fmt"
	"sync"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// Backend persists a token pair.
//
// Load on an empty backend returns zero Tokens and no error.
// Clear on an empty backend is a no-op.
type Backend interface {
	Load() (domain.Tokens, error)
	Save(tokens domain.Tokens) error
	Clear() error
}

// Store is the token store. Every operation is atomic at the granularity of
// the token pair: readers never observe a half-written update.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	tokens  domain.Tokens
	loaded  bool
	logger  logger.Logger

	// unsynced is set while the backend lags the in-memory pair after a
	// failed write. Reload leaves the pair alone in that case.
	unsynced bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for backend failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store over backend. A nil backend means process memory.
func New(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend: backend,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAccessToken returns the access token, or "" when absent.
func (s *Store) GetAccessToken() string {
	return s.Tokens().AccessToken
}

// GetRefreshToken returns the refresh token, or "" when absent.
func (s *Store) GetRefreshToken() string {
	return s.Tokens().RefreshToken
}

// HasToken reports whether an access token is present.
func (s *Store) HasToken() bool {
	return s.GetAccessToken() != ""
}

// Tokens returns the current pair.
func (s *Store) Tokens() domain.Tokens {
	s.mu.RLock()
	if s.loaded {
		t := s.tokens
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.tokens
}

// SetAccessToken replaces the access token, keeping the refresh token.
func (s *Store) SetAccessToken(token string) error {
	return s.update(func(t *domain.Tokens) { t.AccessToken = token })
}

// SetRefreshToken replaces the refresh token, keeping the access token.
func (s *Store) SetRefreshToken(token string) error {
	return s.update(func(t *domain.Tokens) { t.RefreshToken = token })
}

// SetTokens replaces both tokens in a single write.
func (s *Store) SetTokens(tokens domain.Tokens) error {
	return s.update(func(t *domain.Tokens) { *t = tokens })
}

// ClearTokens removes both tokens. Calling it on an empty store is a no-op.
//
// The in-memory pair is cleared even when the backend fails, so the
// process never keeps acting on a session it tried to end.
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = true
	return s.writeLocked(domain.Tokens{})
}

// ReplaceIf stores next only while the current refresh token is expected,
// and reports whether it did. A pair cleared or replaced since expected was
// read is left untouched.
func (s *Store) ReplaceIf(expected string, next domain.Tokens) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	if s.tokens.RefreshToken != expected {
		return false, nil
	}
	return true, s.writeLocked(next)
}

// ClearIf removes both tokens only while the current refresh token is
// expected. It reports whether a non-empty pair was removed.
func (s *Store) ClearIf(expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	if s.tokens.RefreshToken != expected || s.tokens.Empty() {
		return false, nil
	}
	return true, s.writeLocked(domain.Tokens{})
}

// Reload re-reads the backend so a pair rotated by another process sharing
// it is picked up. An unreadable backend keeps the current pair.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loadLocked()
		return
	}
	if s.unsynced {
		return
	}
	tokens, err := s.backend.Load()
	if err != nil {
		s.logger.Warn("failed to re-read session", "error", err)
		return
	}
	s.tokens = tokens
}

func (s *Store) update(fn func(*domain.Tokens)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked()
	next := s.tokens
	fn(&next)
	return s.writeLocked(next)
}

// writeLocked makes next the current pair and persists it.
func (s *Store) writeLocked(next domain.Tokens) error {
	var err error
	if next.Empty() {
		err = s.backend.Clear()
	} else {
		err = s.backend.Save(next)
	}
	s.tokens = next
	s.unsynced = err != nil
	if err != nil {
		s.logger.Error("failed to persist tokens", "error", err)
		return domain.ErrStorage.WithCause(fmt.Errorf("persist tokens: %w", err))
	}
	return nil
}

// loadLocked reads the backend once. An unreadable backend is treated as an
// empty session and wiped.
func (s *Store) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	tokens, err := s.backend.Load()
	if err != nil {
		s.logger.Warn("discarding unreadable session", "error", err)
		if cerr := s.backend.Clear(); cerr != nil {
			s.logger.Error("failed to clear unreadable session", "error", cerr)
		}
		return
	}
	s.tokens = tokens
}

// MemoryBackend keeps the pair in process memory.
type MemoryBackend struct {
	mu     sync.Mutex
	tokens domain.Tokens
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load() (domain.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryBackend) Save(tokens domain.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = domain.Tokens{}
	return nil
}
