package connection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/tokenstore"
)

func newTestDispatcher(t *testing.T, baseURL string, tokens domain.Tokens) (*Dispatcher, *tokenstore.Store) {
	t.Helper()

	store := tokenstore.New(tokenstore.NewMemoryBackend())
	if !tokens.Empty() {
		if err := store.SetTokens(tokens); err != nil {
			t.Fatal(err)
		}
	}
	d, err := NewDispatcher(Config{BaseURL: baseURL}, store)
	if err != nil {
		t.Fatal(err)
	}
	return d, store
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"with http prefix", "http://localhost:8080", "http://localhost:8080"},
		{"with https prefix", "https://localhost:8080", "https://localhost:8080"},
		{"without prefix", "localhost:8080", "http://localhost:8080"},
		{"hostname only", "api.example.com", "http://api.example.com"},
		{"trailing slash", "https://api.example.com/", "https://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeBaseURL(tt.server); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.server, got, tt.want)
			}
		})
	}
}

func TestNewDispatcher_Validation(t *testing.T) {
	store := tokenstore.New(tokenstore.NewMemoryBackend())

	if _, err := NewDispatcher(Config{}, store); err == nil {
		t.Error("expected error for empty base URL")
	}
	if _, err := NewDispatcher(Config{BaseURL: "localhost"}, nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestDispatcher_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer access-1")
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID should be set")
		}
		if r.URL.Path != "/api/students/profile" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":200,"data":{}}`))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(t, server.URL, domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"})

	resp, err := d.Get(context.Background(), "/api/students/profile")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestDispatcher_NoAuthorizationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("Authorization header present: %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	d, _ := newTestDispatcher(t, server.URL, domain.Tokens{})
	if _, err := d.Get(context.Background(), "/api/courses"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
}

func TestDispatcher_HeadersCallerOverride(t *testing.T) {
	d, _ := newTestDispatcher(t, "localhost", domain.Tokens{})

	h := d.headers(context.Background(), "", http.Header{"content-type": {"text/plain"}})
	if got := h.Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want caller override", got)
	}
	if _, ok := h["Authorization"]; ok {
		t.Error("Authorization must be absent without a token")
	}

	h = d.headers(context.Background(), "tok", nil)
	if got := h.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestDispatcher_PostBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"name":"test"}` {
			t.Errorf("body = %q", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	d, _ := newTestDispatcher(t, server.URL, domain.Tokens{})
	resp, err := d.Post(context.Background(), "/api/contact", map[string]string{"name": "test"})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestDispatcher_NonAuthStatusPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not here"}`))
	}))
	defer server.Close()

	d, store := newTestDispatcher(t, server.URL, domain.Tokens{AccessToken: "a", RefreshToken: "r"})

	resp, err := d.Get(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || string(resp.Body) != `{"message":"not here"}` {
		t.Errorf("response = %d %q, want verbatim 404", resp.StatusCode, resp.Body)
	}
	if !store.HasToken() {
		t.Error("a 404 must not touch the tokens")
	}
	if !errors.Is(resp.Result().Err, domain.ErrNotFound) {
		t.Errorf("Result().Err = %v, want ErrNotFound", resp.Result().Err)
	}
}

func TestDispatcher_AnonymousUnauthorizedIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("anonymous request carried Authorization")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	d, store := newTestDispatcher(t, server.URL, domain.Tokens{AccessToken: "a", RefreshToken: "r"})

	resp, err := d.Do(context.Background(), &Request{Method: http.MethodPost, Path: "/api/Auth/student/login", Anonymous: true})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", resp.StatusCode)
	}
	if !store.HasToken() {
		t.Error("anonymous 401 must not end the session")
	}
}

func TestDispatcher_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	d, _ := newTestDispatcher(t, url, domain.Tokens{})

	_, err := d.Get(context.Background(), "/api/courses")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
	if msg := domain.UserMessage(err); msg != domain.ErrNetwork.Message {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestDispatcher_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	store := tokenstore.New(tokenstore.NewMemoryBackend())
	d, err := NewDispatcher(Config{BaseURL: server.URL, RateLimit: 0.001, RateBurst: 1}, store)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := d.Get(ctx, "/"); err != nil {
		t.Fatalf("first request should pass the limiter: %v", err)
	}
	cancel()
	if _, err := d.Get(ctx, "/"); !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("throttled request err = %v, want ErrNetwork", err)
	}
}
