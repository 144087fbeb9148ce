// Package session exposes the reactive authentication state.
//
// A Context wraps the auth service for a long-lived front end (the
// interactive shell or the local gateway). It starts in the loading state,
// settles after Mount, and broadcasts every change to its subscribers.
package session

import (
	"context"
	"sync"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// Authenticator is the auth service as seen by the session context.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*domain.AuthenticatedUser, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	CurrentUser(ctx context.Context) *domain.AuthenticatedUser
}

// State is a snapshot of the authentication state.
type State struct {
	IsAuthenticated bool
	User            *domain.AuthenticatedUser
	IsLoading       bool
}

func (s State) equal(o State) bool {
	return s.IsAuthenticated == o.IsAuthenticated && s.IsLoading == o.IsLoading && s.User == o.User
}

// LoginResult is the outcome of Context.Login. Error holds a message that
// is safe to show as-is; Code is the domain error code it belongs to.
type LoginResult struct {
	Success bool
	Error   string
	Code    string
	User    *domain.AuthenticatedUser
}

// Context holds the authentication state of one front end.
type Context struct {
	auth   Authenticator
	logger logger.Logger

	// emitMu serializes state updates with their broadcast so subscribers
	// see changes in order. Subscribers must not call Login, Logout or
	// SessionEnded synchronously.
	emitMu sync.Mutex

	mu     sync.RWMutex
	state  State
	closed bool
	subs   map[int]func(State)
	nextID int
}

// New creates a Context in the loading state.
func New(auth Authenticator, log logger.Logger) *Context {
	if log == nil {
		log = logger.Default()
	}
	return &Context{
		auth:   auth,
		logger: log,
		state:  State{IsLoading: true},
		subs:   make(map[int]func(State)),
	}
}

// State returns the current state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Mount performs the initial authentication check and leaves the loading
// state.
func (c *Context) Mount(ctx context.Context) {
	authenticated := c.auth.IsAuthenticated()

	var user *domain.AuthenticatedUser
	if authenticated {
		user = c.auth.CurrentUser(ctx)
	}
	c.apply(State{IsAuthenticated: authenticated, User: user})
}

// Login delegates to the auth service. It never returns an error; failures
// are reported through LoginResult.Error.
func (c *Context) Login(ctx context.Context, identifier, password string) LoginResult {
	user, err := c.auth.Login(ctx, identifier, password)
	if err != nil {
		logger.L(ctx).Debug("login failed", "error", err)
		code := domain.GetErrorCode(err)
		if code == "" {
			code = domain.ErrServer.Code
		}
		return LoginResult{Error: domain.UserMessage(err), Code: code}
	}

	c.apply(State{IsAuthenticated: true, User: user})
	return LoginResult{Success: true, User: user}
}

// Logout delegates to the auth service and marks the context
// unauthenticated whatever the outcome. Only local storage errors are
// returned.
func (c *Context) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	c.apply(State{})
	return err
}

// SessionEnded marks the context unauthenticated after the dispatcher ended
// the session. It matches the listener signature of the dispatcher.
func (c *Context) SessionEnded(cause error) {
	c.logger.Debug("session ended by dispatcher", "error", cause)
	c.apply(State{})
}

// Refresh re-reads the state from the auth service.
func (c *Context) Refresh(ctx context.Context) {
	c.Mount(ctx)
}

// Subscribe registers fn for every subsequent state change.
func (c *Context) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close detaches the context. Results arriving afterwards do not change
// the state or reach subscribers.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subs = make(map[int]func(State))
}

// apply installs next and broadcasts it if it differs from the current
// state. A closed context ignores the update.
func (c *Context) apply(next State) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.closed || c.state.equal(next) {
		c.mu.Unlock()
		return
	}
	c.state = next
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
