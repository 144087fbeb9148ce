package config

import (
	"path/filepath"
	"time"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/service"
	serverconfig "github.com/harshitprakash/max-education-software-sub000/internal/server/config"
)

// Session store kinds.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

// CLIConfig is the configuration of the maxedu client.
type CLIConfig struct {
	Server    ServerSection              `koanf:"server" yaml:"server"`
	Endpoints service.Endpoints          `koanf:"endpoints" yaml:"endpoints"`
	Session   SessionSection             `koanf:"session" yaml:"session"`
	Storage   StorageSection             `koanf:"storage" yaml:"storage"`
	Log       LogSection                 `koanf:"log" yaml:"log"`
	Gateway   serverconfig.GatewayConfig `koanf:"gateway" yaml:"gateway"`

	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	// Profiles are named backends. Each profile keeps its own tokens and
	// student snapshot.
	Profiles       map[string]ProfileConfig `koanf:"profiles" yaml:"profiles,omitempty"`
	CurrentProfile string                   `koanf:"current_profile" yaml:"current_profile,omitempty"`
}

// ServerSection configures the portal backend.
type ServerSection struct {
	BaseURL            string        `koanf:"base_url" yaml:"base_url"`
	Timeout            time.Duration `koanf:"timeout" yaml:"timeout"`
	CAFile             string        `koanf:"ca_file" yaml:"ca_file,omitempty"`
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
	UserAgent          string        `koanf:"user_agent" yaml:"user_agent,omitempty"`

	// RateLimit is in requests per second; 0 disables throttling.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit,omitempty"`
	RateBurst int     `koanf:"rate_burst" yaml:"rate_burst,omitempty"`
}

// SessionSection configures token storage and refresh.
type SessionSection struct {
	// Store is "file" (encrypted, survives restarts) or "memory".
	Store          string        `koanf:"store" yaml:"store"`
	Dir            string        `koanf:"dir" yaml:"dir,omitempty"`
	RefreshTimeout time.Duration `koanf:"refresh_timeout" yaml:"refresh_timeout"`
	RevokeField    string        `koanf:"revoke_field" yaml:"revoke_field"`
}

// StorageSection configures the student snapshot database.
type StorageSection struct {
	DataDir  string `koanf:"data_dir" yaml:"data_dir,omitempty"`
	InMemory bool   `koanf:"in_memory" yaml:"in_memory,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ProfileConfig is a saved backend.
type ProfileConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
}

// Default values.
const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultOutput  = "table"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: ServerSection{
			BaseURL: DefaultBaseURL,
			Timeout: connection.DefaultTimeout,
		},
		Endpoints: service.DefaultEndpoints(),
		Session: SessionSection{
			Store:          StoreFile,
			RefreshTimeout: connection.DefaultRefreshTimeout,
			RevokeField:    service.DefaultRevokeField,
		},
		Log: LogSection{
			Level:  "warn",
			Format: "text",
		},
		Gateway:  serverconfig.Default(),
		Output:   DefaultOutput,
		Profiles: make(map[string]ProfileConfig),
	}
}

// ActiveBaseURL returns the backend of the current profile, falling back to
// server.base_url.
func (c *CLIConfig) ActiveBaseURL() string {
	if p, ok := c.Profiles[c.CurrentProfile]; ok && p.BaseURL != "" {
		return p.BaseURL
	}
	return c.Server.BaseURL
}

// ActiveProfile returns the current profile name, or "default".
func (c *CLIConfig) ActiveProfile() string {
	if c.CurrentProfile == "" {
		return connection.DefaultProfile
	}
	return c.CurrentProfile
}

// ProfileURLs returns every saved profile's backend, plus the default
// profile pointing at server.base_url.
func (c *CLIConfig) ProfileURLs() map[string]string {
	urls := map[string]string{connection.DefaultProfile: c.Server.BaseURL}
	for name, p := range c.Profiles {
		urls[name] = p.BaseURL
	}
	return urls
}

// DataDir returns the snapshot database directory, defaulting to a "data"
// directory next to the default config file.
func (c *CLIConfig) DataDir() string {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir
	}
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "data")
}

// ControlSocket returns the gateway control socket path, or "" when the
// socket is disabled.
func (c *CLIConfig) ControlSocket(configPath string) string {
	switch c.Gateway.ControlSocket {
	case serverconfig.ControlSocketDisabled:
		return ""
	case "":
		if configPath == "" {
			configPath = DefaultConfigPath()
		}
		return filepath.Join(filepath.Dir(configPath), "gateway.sock")
	default:
		return c.Gateway.ControlSocket
	}
}
