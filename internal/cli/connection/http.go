package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/metric"
)

// Defaults.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultRefreshTimeout = 15 * time.Second
	DefaultRefreshPath    = "/api/Auth/refresh-token"
	DefaultUserAgent      = "maxedu-cli/1.0"

	maxResponseBytes = 4 << 20
)

// TokenStore is the subset of the token store the dispatcher needs.
type TokenStore interface {
	Tokens() domain.Tokens
	GetAccessToken() string
	GetRefreshToken() string
	ReplaceIf(expected string, next domain.Tokens) (bool, error)
	ClearIf(expected string) (bool, error)
	Reload()
}

// Config configures a Dispatcher.
type Config struct {
	// BaseURL of the backend. "http://" is assumed when no scheme is given.
	BaseURL string

	// Timeout bounds each HTTP round-trip. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent sent with every request.
	UserAgent string

	// RefreshPath is the token refresh endpoint.
	RefreshPath string

	// RefreshTimeout bounds the refresh exchange, which runs detached
	// from the caller that started it.
	RefreshTimeout time.Duration

	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64
	RateBurst int

	// TLSConfig overrides the transport's TLS settings (custom CA roots).
	TLSConfig *tls.Config

	// HTTPClient replaces the default client entirely. Timeout and
	// TLSConfig are ignored when set.
	HTTPClient *http.Client

	Metrics *metric.Registry
	Logger  logger.Logger
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string

	// Body is JSON-encoded. []byte and json.RawMessage are sent as-is.
	Body any

	// Header is applied last and may override the defaults.
	Header http.Header

	// Anonymous requests carry no bearer token and get no refresh handling.
	Anonymous bool

	// NoRefresh requests carry the bearer token but return a 401 as-is.
	NoRefresh bool
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Result parses the response envelope.
func (r *Response) Result() domain.Result {
	return domain.ParseEnvelope(r.StatusCode, r.Body)
}

// Dispatcher performs backend requests with bearer-token injection and
// transparent, deduplicated token refresh.
type Dispatcher struct {
	baseURL        string
	client         *http.Client
	store          TokenStore
	limiter        *rate.Limiter
	userAgent      string
	refreshPath    string
	refreshTimeout time.Duration
	metrics        *metric.Registry
	logger         logger.Logger

	refresh refresher

	listenersMu sync.Mutex
	listeners   map[int]func(error)
	nextID      int
}

// NewDispatcher creates a dispatcher over store.
func NewDispatcher(cfg Config, store TokenStore) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("connection: token store is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("connection: base URL is required")
	}

	d := &Dispatcher{
		baseURL:        NormalizeBaseURL(cfg.BaseURL),
		store:          store,
		userAgent:      cfg.UserAgent,
		refreshPath:    cfg.RefreshPath,
		refreshTimeout: cfg.RefreshTimeout,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		listeners:      make(map[int]func(error)),
	}
	if d.userAgent == "" {
		d.userAgent = DefaultUserAgent
	}
	if d.refreshPath == "" {
		d.refreshPath = DefaultRefreshPath
	}
	if d.refreshTimeout <= 0 {
		d.refreshTimeout = DefaultRefreshTimeout
	}
	if d.logger == nil {
		d.logger = logger.Default()
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	d.client = cfg.HTTPClient
	if d.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.TLSConfig != nil {
			transport.TLSClientConfig = cfg.TLSConfig
		}
		d.client = &http.Client{Timeout: timeout, Transport: transport}
	}

	return d, nil
}

// NormalizeBaseURL adds a missing scheme and strips trailing slashes.
func NormalizeBaseURL(server string) string {
	baseURL := strings.TrimSpace(server)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// BaseURL returns the base URL of the dispatcher.
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

// Do performs req.
//
// A 401 on the first attempt triggers the single-flight refresh and one
// retry whose response is returned verbatim, except that a second 401 ends
// the session with ErrUnauthorized. A failed refresh ends the session with
// ErrSessionExpired. Every other status is returned unmodified.
func (d *Dispatcher) Do(ctx context.Context, req *Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	var seen domain.Tokens
	if !req.Anonymous {
		seen = d.store.Tokens()
	}
	token := seen.AccessToken

	resp, err := d.send(ctx, req, body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Anonymous || req.NoRefresh {
		return resp, nil
	}

	// A refresh may have completed while this request was in flight, here
	// or in another process sharing the session. The 401 then belongs to
	// the old token and the request is simply retried.
	d.store.Reload()
	current := d.store.GetAccessToken()
	if current == "" || current == token {
		if _, err := d.RefreshToken(ctx); err != nil {
			if isContextErr(err) {
				return nil, err
			}
			// A failed exchange has already ended the session it was for.
			d.endSession(metric.EndSessionExpired, domain.ErrSessionExpired, seen.RefreshToken)
			return nil, domain.ErrSessionExpired.WithCause(err)
		}
	}

	retried := d.store.Tokens()
	retry, err := d.send(ctx, req, body, retried.AccessToken)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		d.endSession(metric.EndUnauthorized, domain.ErrUnauthorized, retried.RefreshToken)
		return nil, domain.ErrUnauthorized
	}
	return retry, nil
}

// Get performs an authenticated GET.
func (d *Dispatcher) Get(ctx context.Context, path string) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodGet, Path: path})
}

// Post performs an authenticated POST with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body any) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// OnSessionEnd registers fn to be told when the dispatcher ends the
// session. It returns a function that removes the registration.
func (d *Dispatcher) OnSessionEnd(fn func(error)) (remove func()) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()

	id := d.nextID
	d.nextID++
	d.listeners[id] = fn

	return func() {
		d.listenersMu.Lock()
		defer d.listenersMu.Unlock()
		delete(d.listeners, id)
	}
}

// endSession clears the tokens of the session identified by refreshToken.
// A session that was already cleared or replaced by a newer login is left
// alone, and listeners are notified only when a session actually ended.
func (d *Dispatcher) endSession(reason string, cause error, refreshToken string) {
	ended, err := d.store.ClearIf(refreshToken)
	if err != nil {
		d.logger.Error("failed to clear tokens", "error", err)
	}
	if !ended {
		return
	}

	d.metrics.ObserveSessionEnd(reason)
	d.logger.Info("session ended", "reason", reason)

	d.listenersMu.Lock()
	fns := make([]func(error), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.listenersMu.Unlock()

	for _, fn := range fns {
		fn(cause)
	}
}

// send issues a single HTTP round-trip.
func (d *Dispatcher) send(ctx context.Context, req *Request, body []byte, token string) (*Response, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrNetwork.WithCause(fmt.Errorf("rate limit: %w", err))
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, d.baseURL+req.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header = d.headers(ctx, token, req.Header)

	start := time.Now()
	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		d.metrics.ObserveRequest(method, 0, time.Since(start))
		logger.L(ctx).Debug("backend request failed", "method", method, "path", req.Path, "error", err)
		return nil, domain.ErrNetwork.WithCause(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	d.metrics.ObserveRequest(method, httpResp.StatusCode, elapsed)
	if err != nil {
		return nil, domain.ErrNetwork.WithCause(fmt.Errorf("read response: %w", err))
	}

	logger.L(ctx).Debug("backend request",
		"method", method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"authenticated", token != "",
		"elapsed", elapsed)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// headers builds the request headers. Authorization is present only when
// token is non-empty; caller headers are applied last.
func (d *Dispatcher) headers(ctx context.Context, token string, extra http.Header) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", d.userAgent)

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	h.Set("X-Request-ID", requestID)

	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}

	for k, vs := range extra {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return h
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
