// Package guard gates protected views on the session state.
//
// The guard makes its decision from the session flags alone. It never
// touches the network or the token store.
package guard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/session"
)

// Decision is what a guarded view should do.
type Decision int

const (
	// Loading renders a neutral placeholder and decides nothing.
	Loading Decision = iota
	// Render renders the protected view.
	Render
	// Redirect sends the user to the login entry point.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Decide maps the session state to a decision.
func Decide(s session.State) Decision {
	switch {
	case s.IsLoading:
		return Loading
	case s.IsAuthenticated:
		return Render
	default:
		return Redirect
	}
}

// ErrNotReady is returned by Require while the session is still loading.
var ErrNotReady = errors.New("guard: session state not loaded")

// Require returns nil when the protected view may render and
// domain.ErrLoginRequired when the user must log in first.
func Require(s session.State) error {
	switch Decide(s) {
	case Render:
		return nil
	case Loading:
		return ErrNotReady
	default:
		return domain.ErrLoginRequired
	}
}

// StateSource provides the session state. *session.Context implements it.
type StateSource interface {
	State() session.State
}

// Guard is the HTTP form of the route guard.
type Guard struct {
	source     StateSource
	loginPath  string
	retryAfter time.Duration
}

// DefaultLoginPath is the login entry point of the gateway.
const DefaultLoginPath = "/login"

// New creates a guard that redirects to loginPath.
func New(source StateSource, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Guard{
		source:     source,
		loginPath:  loginPath,
		retryAfter: time.Second,
	}
}

// Middleware gates next.
//
// Loading answers 503 with Retry-After. Redirect answers 303 See Other to
// the login path with the original target in "next"; the response is
// marked no-store so history cannot bring the protected page back.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch Decide(g.source.State()) {
		case Render:
			next.ServeHTTP(w, r)

		case Loading:
			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Retry-After", strconv.Itoa(int(g.retryAfter/time.Second)))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":503,"message":"Loading"}`))

		default:
			target := g.loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, target, http.StatusSeeOther)
		}
	})
}
