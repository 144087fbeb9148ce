package connection

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/metric"
)

// errSessionChanged marks an exchange whose session was logged out or
// replaced before the new pair could be stored.
var errSessionChanged = errors.New("session changed during token refresh")

// RefreshState is the state of the token refresh machine.
type RefreshState int

const (
	// RefreshIdle means no exchange is in flight.
	RefreshIdle RefreshState = iota
	// RefreshRefreshing means one exchange is in flight; new callers join it.
	RefreshRefreshing
	// RefreshFailed means the last exchange failed. The next call starts over.
	RefreshFailed
)

func (s RefreshState) String() string {
	switch s {
	case RefreshIdle:
		return "idle"
	case RefreshRefreshing:
		return "refreshing"
	case RefreshFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// refreshCall is a single-assignment result shared by every waiter.
// tokens and err are written once, before done is closed.
type refreshCall struct {
	done    chan struct{}
	tokens  domain.Tokens
	err     error
	waiters int
}

// refresher guards the refresh state. It is the only place where at most
// one exchange may exist.
type refresher struct {
	mu      sync.Mutex
	state   RefreshState
	call    *refreshCall
	lastErr error
}

// RefreshToken exchanges the refresh token for a new pair.
//
// At most one exchange is in flight per dispatcher; concurrent callers wait
// for and receive the same result. The exchange is detached from the
// caller's cancellation and bounded by the refresh timeout. A caller whose
// context ends stops waiting without affecting the exchange.
//
// On success both tokens are stored in one write before any waiter resumes.
// On failure the tokens are cleared. Either commit applies only while the
// store still holds the refresh token that was exchanged: a logout or a new
// login during the exchange wins, and the exchange then fails with
// ErrSessionExpired. Without a refresh token the call fails with
// ErrNoRefreshToken and no request is made.
func (d *Dispatcher) RefreshToken(ctx context.Context) (domain.Tokens, error) {
	r := &d.refresh

	r.mu.Lock()
	call := r.call
	if call == nil {
		d.store.Reload()
		refreshToken := d.store.GetRefreshToken()
		if refreshToken == "" {
			r.state = RefreshFailed
			r.lastErr = domain.ErrNoRefreshToken
			r.mu.Unlock()
			d.metrics.ObserveRefresh(metric.RefreshNoToken)
			return domain.Tokens{}, domain.ErrNoRefreshToken
		}

		call = &refreshCall{done: make(chan struct{})}
		r.call = call
		r.state = RefreshRefreshing
		go d.runRefresh(context.WithoutCancel(ctx), call, refreshToken)
	}
	call.waiters++
	d.metrics.SetRefreshWaiters(call.waiters)
	r.mu.Unlock()

	select {
	case <-call.done:
		return call.tokens, call.err
	case <-ctx.Done():
		r.mu.Lock()
		call.waiters--
		if r.call == call {
			d.metrics.SetRefreshWaiters(call.waiters)
		}
		r.mu.Unlock()
		return domain.Tokens{}, ctx.Err()
	}
}

// RefreshState reports the state of the refresh machine and, when Failed,
// the error of the last attempt.
func (d *Dispatcher) RefreshState() (RefreshState, error) {
	d.refresh.mu.Lock()
	defer d.refresh.mu.Unlock()
	return d.refresh.state, d.refresh.lastErr
}

// RefreshWaiters returns how many callers are waiting on the in-flight
// exchange, or 0 when none is in flight.
func (d *Dispatcher) RefreshWaiters() int {
	d.refresh.mu.Lock()
	defer d.refresh.mu.Unlock()
	if d.refresh.call == nil {
		return 0
	}
	return d.refresh.call.waiters
}

func (d *Dispatcher) runRefresh(ctx context.Context, call *refreshCall, refreshToken string) {
	ctx, cancel := context.WithTimeout(ctx, d.refreshTimeout)
	defer cancel()

	tokens, err := d.exchange(ctx, refreshToken)
	if err == nil {
		committed, serr := d.store.ReplaceIf(refreshToken, tokens)
		switch {
		case serr != nil:
			err = serr
		case !committed:
			err = domain.ErrSessionExpired.WithCause(errSessionChanged)
		}
	}

	if err != nil {
		logger.L(ctx).Warn("token refresh failed", "error", err)
		d.endSession(metric.EndSessionExpired, domain.ErrSessionExpired.WithCause(err), refreshToken)
		tokens = domain.Tokens{}
	} else {
		logger.L(ctx).Debug("token refreshed")
	}

	r := &d.refresh
	r.mu.Lock()
	call.tokens = tokens
	call.err = err
	r.call = nil
	if err != nil {
		r.state = RefreshFailed
		r.lastErr = err
	} else {
		r.state = RefreshIdle
		r.lastErr = nil
	}
	r.mu.Unlock()

	d.metrics.SetRefreshWaiters(0)
	close(call.done)
}

// exchange performs the refresh request and validates the new pair.
func (d *Dispatcher) exchange(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	resp, err := d.send(ctx, &Request{Method: http.MethodPost, Path: d.refreshPath, Anonymous: true},
		mustJSON(map[string]string{"refreshToken": refreshToken}), "")
	if err != nil {
		d.metrics.ObserveRefresh(metric.RefreshNetwork)
		return domain.Tokens{}, err
	}

	res := resp.Result()
	if !res.OK() {
		d.metrics.ObserveRefresh(metric.RefreshRejected)
		return domain.Tokens{}, domain.ErrRefreshRejected.WithCause(res.Err)
	}

	var tokens domain.Tokens
	if err := res.Decode(&tokens); err != nil || !tokens.Complete() {
		if err == nil {
			err = errors.New("refresh response lacks a complete token pair")
		}
		d.metrics.ObserveRefresh(metric.RefreshRejected)
		return domain.Tokens{}, domain.ErrRefreshRejected.WithCause(err)
	}

	d.metrics.ObserveRefresh(metric.RefreshSuccess)
	return tokens, nil
}

func mustJSON(v map[string]string) []byte {
	data, _ := encodeBody(v)
	return data
}
