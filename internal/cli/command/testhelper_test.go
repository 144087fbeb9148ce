package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// mockBackend is a fake portal backend. It accepts the password "secret"
// and issues the access token "access-1".
type mockBackend struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
}

const (
	testAccessToken  = "access-1"
	testRefreshToken = "refresh-1"
)

func newMockBackend(t *testing.T) *mockBackend {
	t.Helper()

	m := &mockBackend{calls: make(map[string]int)}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/Auth/student/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			jsonResponse(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Invalid password for asha"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"status": 200,
			"data": map[string]any{
				"accessToken":  testAccessToken,
				"refreshToken": testRefreshToken,
				"user":         map[string]any{"id": "u1", "userName": "asha", "email": "asha@max.edu"},
				"student":      map[string]any{"id": "s1", "fullName": "Asha Rao", "studentCode": "MAX-042", "program": "Data Science"},
			},
		})
	})
	mux.HandleFunc("POST /api/Auth/revoke-token", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"status": 200})
	})
	mux.HandleFunc("POST /api/Auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusUnauthorized, map[string]any{"status": 401})
	})

	authed := func(data any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
				jsonResponse(w, http.StatusUnauthorized, map[string]any{"status": 401})
				return
			}
			jsonResponse(w, http.StatusOK, map[string]any{"status": 200, "data": data})
		}
	}
	mux.HandleFunc("GET /api/students/profile", authed(map[string]any{
		"id": "s1", "fullName": "Asha Rao", "studentCode": "MAX-042", "email": "asha@max.edu",
	}))
	mux.HandleFunc("GET /api/students/courses", authed([]map[string]any{
		{"id": "e1", "status": "active", "progress": 50, "course": map[string]any{"id": "c1", "title": "Machine Learning", "code": "ML-101"}},
	}))
	mux.HandleFunc("GET /api/students/fees", authed([]map[string]any{
		{"id": "f1", "description": "Tuition", "amount": 1000, "paid": 400},
		{"id": "f2", "description": "Library", "amount": 50, "paid": 50},
	}))
	mux.HandleFunc("GET /api/courses", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"status": 200, "data": []map[string]any{
			{"id": "c1", "title": "Machine Learning", "duration": "6 months", "fee": 1000},
		}})
	})
	mux.HandleFunc("GET /api/certificates/verify/{number}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("number") != "MAX-CERT-1" {
			jsonResponse(w, http.StatusNotFound, map[string]any{"status": 404, "message": "certificate missing"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{"status": 200, "data": map[string]any{
			"certificateNumber": "MAX-CERT-1", "studentName": "Asha Rao", "courseName": "Machine Learning",
		}})
	})

	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"status": 200, "message": "Thanks, we will be in touch."})
	})

	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.calls[r.Method+" "+r.URL.Path]++
		m.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// called returns how often "METHOD path" was requested.
func (m *mockBackend) called(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// testEnv is an isolated client home: a config file pointing at a mock
// backend, a token directory and an in-memory snapshot store.
type testEnv struct {
	t          *testing.T
	dir        string
	configPath string
	backend    *mockBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := newMockBackend(t)
	dir := t.TempDir()
	env := &testEnv{
		t:          t,
		dir:        dir,
		configPath: filepath.Join(dir, "cli.yaml"),
		backend:    backend,
	}

	cfg := strings.Join([]string{
		"server:",
		"  base_url: " + backend.URL,
		"session:",
		"  store: file",
		"  dir: " + filepath.Join(dir, "tokens"),
		"storage:",
		"  in_memory: true",
		"log:",
		"  level: error",
		"",
	}, "\n")
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return env
}

// result is the outcome of one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// run executes maxedu with args against the environment's config file.
func (e *testEnv) run(args ...string) result {
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(input string, args ...string) result {
	e.t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(input)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"maxedu", "--config", e.configPath}, args...)
	err := app.RunContext(context.Background(), argv)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// login logs the test student in.
func (e *testEnv) login() {
	e.t.Helper()
	if res := e.run("login", "asha@max.edu", "--password", "secret"); res.err != nil {
		e.t.Fatalf("login failed: %v\n%s", res.err, res.stderr)
	}
}

// writeConfig replaces the config file.
func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// appendConfig adds YAML lines to the config file.
func (e *testEnv) appendConfig(lines ...string) {
	e.t.Helper()
	f, err := os.OpenFile(e.configPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		e.t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		e.t.Fatal(err)
	}
}
