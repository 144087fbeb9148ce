package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL != DefaultBaseURL {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, DefaultBaseURL)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want table", cfg.Output)
	}
	if cfg.Session.Store != StoreFile {
		t.Errorf("Session.Store = %q, want file", cfg.Session.Store)
	}
	if cfg.Session.RevokeField != "refreshToken" {
		t.Errorf("Session.RevokeField = %q", cfg.Session.RevokeField)
	}
	if cfg.Profiles == nil {
		t.Error("Profiles should not be nil")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".maxedu", "cli.yaml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != DefaultBaseURL {
		t.Error("missing file should yield defaults")
	}
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `
server:
  base_url: https://portal.example.edu
  timeout: 10s
session:
  store: memory
output: json
profiles:
  staging:
    base_url: https://staging.example.edu
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAXEDU_LOG__LEVEL", "debug")

	cfg, err := Load(path, map[string]any{"output": "yaml"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://portal.example.edu" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Timeout != 10*time.Second {
		t.Errorf("Server.Timeout = %v, want 10s", cfg.Server.Timeout)
	}
	if cfg.Session.Store != StoreMemory {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.Session.RevokeField != "refreshToken" {
		t.Error("default lost for keys absent from the file")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env value", cfg.Log.Level)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want override", cfg.Output)
	}
	if cfg.Profiles["staging"].BaseURL != "https://staging.example.edu" {
		t.Errorf("Profiles = %v", cfg.Profiles)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cli.yaml")

	cfg := Default()
	cfg.Server.BaseURL = "https://portal.example.edu"
	cfg.Session.RefreshTimeout = 7 * time.Second
	cfg.Profiles["lab"] = ProfileConfig{BaseURL: "http://lab.local:5000"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("BaseURL = %q", loaded.Server.BaseURL)
	}
	if loaded.Session.RefreshTimeout != 7*time.Second {
		t.Errorf("RefreshTimeout = %v", loaded.Session.RefreshTimeout)
	}
	if loaded.Profiles["lab"].BaseURL != "http://lab.local:5000" {
		t.Errorf("Profiles = %v", loaded.Profiles)
	}
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	t.Setenv("MAXEDU_OUTPUT", "json")

	cfg, err := Set(path, "server.base_url", "https://portal.example.edu")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Server.BaseURL != "https://portal.example.edu" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Output != "table" {
		t.Error("Set must not persist environment values")
	}

	if _, err := Set(path, "server.rate_limit", "2.5"); err != nil {
		t.Fatalf("Set(rate_limit) error = %v", err)
	}
	if _, err := Set(path, "profiles.lab.base_url", "http://lab.local"); err != nil {
		t.Fatalf("Set(profile) error = %v", err)
	}

	loaded, err := Load(path, map[string]any{"output": "table"})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.BaseURL != "https://portal.example.edu" || loaded.Server.RateLimit != 2.5 {
		t.Errorf("Server = %+v", loaded.Server)
	}
	if loaded.Profiles["lab"].BaseURL != "http://lab.local" {
		t.Errorf("Profiles = %v", loaded.Profiles)
	}
}

func TestSet_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	if _, err := Set(path, "server.password", "x"); err == nil {
		t.Error("unknown key should be rejected")
	}
	if _, err := Set(path, "output", "xml"); err == nil {
		t.Error("invalid value should be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected Set must not write the file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*CLIConfig)
		wantErr string
	}{
		{"bad base url", func(c *CLIConfig) { c.Server.BaseURL = "portal" }, "server.base_url"},
		{"ftp base url", func(c *CLIConfig) { c.Server.BaseURL = "ftp://portal" }, "server.base_url"},
		{"zero timeout", func(c *CLIConfig) { c.Server.Timeout = 0 }, "server.timeout"},
		{"negative rate", func(c *CLIConfig) { c.Server.RateLimit = -1 }, "rate_limit"},
		{"missing ca", func(c *CLIConfig) { c.Server.CAFile = "/nonexistent/ca.pem" }, "server.ca_file"},
		{"store", func(c *CLIConfig) { c.Session.Store = "redis" }, "session.store"},
		{"refresh timeout", func(c *CLIConfig) { c.Session.RefreshTimeout = 0 }, "session.refresh_timeout"},
		{"revoke field", func(c *CLIConfig) { c.Session.RevokeField = " " }, "session.revoke_field"},
		{"output", func(c *CLIConfig) { c.Output = "xml" }, "output"},
		{"log level", func(c *CLIConfig) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *CLIConfig) { c.Log.Format = "xml" }, "log.format"},
		{"profile name", func(c *CLIConfig) { c.Profiles["../x"] = ProfileConfig{BaseURL: "http://x"} }, "profile name"},
		{"profile url", func(c *CLIConfig) { c.Profiles["lab"] = ProfileConfig{BaseURL: ""} }, "profiles.lab.base_url"},
		{"current profile", func(c *CLIConfig) { c.CurrentProfile = "missing" }, "current_profile"},
		{"gateway", func(c *CLIConfig) { c.Gateway.Address = "" }, "gateway.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestActiveProfile(t *testing.T) {
	cfg := Default()
	if cfg.ActiveProfile() != "default" || cfg.ActiveBaseURL() != DefaultBaseURL {
		t.Errorf("default profile = %q %q", cfg.ActiveProfile(), cfg.ActiveBaseURL())
	}

	cfg.Profiles["lab"] = ProfileConfig{BaseURL: "http://lab.local"}
	cfg.CurrentProfile = "lab"
	if cfg.ActiveProfile() != "lab" || cfg.ActiveBaseURL() != "http://lab.local" {
		t.Errorf("lab profile = %q %q", cfg.ActiveProfile(), cfg.ActiveBaseURL())
	}

	urls := cfg.ProfileURLs()
	if len(urls) != 2 || urls["default"] != DefaultBaseURL {
		t.Errorf("ProfileURLs() = %v", urls)
	}
}

func TestDataDir(t *testing.T) {
	cfg := Default()
	if !strings.HasSuffix(cfg.DataDir(), filepath.Join(".maxedu", "data")) {
		t.Errorf("DataDir() = %q", cfg.DataDir())
	}

	cfg.Storage.DataDir = "/var/lib/maxedu"
	if cfg.DataDir() != "/var/lib/maxedu" {
		t.Errorf("DataDir() = %q, want configured dir", cfg.DataDir())
	}
}

func TestRemoveProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if _, err := Set(path, "profiles.lab.base_url", "http://lab.local"); err != nil {
		t.Fatal(err)
	}
	if _, err := Set(path, "current_profile", "lab"); err != nil {
		t.Fatal(err)
	}

	cfg, err := RemoveProfile(path, "lab")
	if err != nil {
		t.Fatalf("RemoveProfile() error = %v", err)
	}
	if _, ok := cfg.Profiles["lab"]; ok || cfg.CurrentProfile != "" {
		t.Errorf("profile not removed: %v current=%q", cfg.Profiles, cfg.CurrentProfile)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Profiles["lab"]; ok {
		t.Error("removal not saved")
	}

	if _, err := RemoveProfile(path, "lab"); err == nil {
		t.Error("removing an unknown profile should fail")
	}
}

func TestControlSocket(t *testing.T) {
	cfg := Default()
	if got := cfg.ControlSocket("/home/asha/.maxedu/cli.yaml"); got != filepath.Join("/home/asha/.maxedu", "gateway.sock") {
		t.Errorf("ControlSocket() = %q", got)
	}

	cfg.Gateway.ControlSocket = "/run/maxedu.sock"
	if got := cfg.ControlSocket(""); got != "/run/maxedu.sock" {
		t.Errorf("ControlSocket() = %q, want configured path", got)
	}

	cfg.Gateway.ControlSocket = "-"
	if got := cfg.ControlSocket(""); got != "" {
		t.Errorf("ControlSocket() = %q, want disabled", got)
	}
}
