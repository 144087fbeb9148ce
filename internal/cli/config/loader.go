package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harshitprakash/max-education-software-sub000/internal/infra/confloader"
	serverconfig "github.com/harshitprakash/max-education-software-sub000/internal/server/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/tokenstore"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".maxedu", "cli.yaml")
}

// Load builds the configuration from defaults, the file at path, MAXEDU_*
// environment variables and overrides, in that order. overrides are keyed
// by dotted path and usually come from command-line flags. A missing file is
// not an error.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := l.Load(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, readable only by the owner.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// settableKeys are the keys "config set" accepts. profiles.<name>.base_url
// is handled separately.
var settableKeys = []string{
	"server.base_url", "server.timeout", "server.ca_file", "server.insecure_skip_verify",
	"server.user_agent", "server.rate_limit", "server.rate_burst",
	"endpoints.login", "endpoints.refresh", "endpoints.revoke", "endpoints.change_password",
	"endpoints.profile", "endpoints.courses", "endpoints.fees", "endpoints.certificates",
	"endpoints.catalog", "endpoints.verify_certificate", "endpoints.contact",
	"session.store", "session.dir", "session.refresh_timeout", "session.revoke_field",
	"storage.data_dir", "storage.in_memory",
	"log.level", "log.format",
	"gateway.address", "gateway.login_path", "gateway.tls_cert", "gateway.tls_key", "gateway.control_socket",
	"gateway.read_timeout", "gateway.write_timeout", "gateway.shutdown_timeout",
	"output", "current_profile",
}

// Set updates one key in the file at path. The environment is ignored, so
// only the file's own values are written back.
func Set(path, key, value string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if !slices.Contains(settableKeys, key) && !isProfileKey(key) {
		return nil, fmt.Errorf("config: unknown key %q", key)
	}

	cfg, err := loadFile(path, map[string]any{key: value})
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, Save(cfg, path)
}

// RemoveProfile deletes a saved profile from the file at path. The current
// profile falls back to the default when it is the one removed.
func RemoveProfile(path, name string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg, err := loadFile(path, nil)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Profiles[name]; !ok {
		return nil, fmt.Errorf("config: unknown profile %q", name)
	}
	delete(cfg.Profiles, name)
	if cfg.CurrentProfile == name {
		cfg.CurrentProfile = ""
	}
	return cfg, Save(cfg, path)
}

// loadFile loads defaults, the file at path and overrides, ignoring the
// environment.
func loadFile(path string, overrides map[string]any) (*CLIConfig, error) {
	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithoutEnv(),
		confloader.WithOverrides(overrides),
	)
	if err := l.Load(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func isProfileKey(key string) bool {
	parts := strings.Split(key, ".")
	return len(parts) == 3 && parts[0] == "profiles" && parts[2] == "base_url" &&
		tokenstore.ValidProfileName(parts[1])
}

var (
	validOutputs = []string{"table", "json", "yaml"}
	validStores  = []string{StoreFile, StoreMemory}
)

// Validate checks cfg for values the client cannot work with.
func Validate(cfg *CLIConfig) error {
	var errs []error

	if err := validBaseURL("server.base_url", cfg.Server.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Server.Timeout <= 0 {
		errs = append(errs, errors.New("server.timeout must be positive"))
	}
	if cfg.Server.RateLimit < 0 || cfg.Server.RateBurst < 0 {
		errs = append(errs, errors.New("server.rate_limit and server.rate_burst must not be negative"))
	}
	if cfg.Server.CAFile != "" {
		if _, err := os.Stat(cfg.Server.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("server.ca_file: %w", err))
		}
	}

	if !slices.Contains(validStores, cfg.Session.Store) {
		errs = append(errs, fmt.Errorf("session.store %q must be one of %v", cfg.Session.Store, validStores))
	}
	if cfg.Session.RefreshTimeout <= 0 {
		errs = append(errs, errors.New("session.refresh_timeout must be positive"))
	}
	if strings.TrimSpace(cfg.Session.RevokeField) == "" {
		errs = append(errs, errors.New("session.revoke_field is required"))
	}

	if !slices.Contains(validOutputs, cfg.Output) {
		errs = append(errs, fmt.Errorf("output %q must be one of %v", cfg.Output, validOutputs))
	}
	if !slices.Contains(logger.Levels, strings.ToLower(cfg.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %v", cfg.Log.Level, logger.Levels))
	}
	if !slices.Contains(logger.Formats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q must be one of %v", cfg.Log.Format, logger.Formats))
	}

	for name, p := range cfg.Profiles {
		if !tokenstore.ValidProfileName(name) {
			errs = append(errs, fmt.Errorf("profile name %q is invalid", name))
		}
		if err := validBaseURL("profiles."+name+".base_url", p.BaseURL); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.CurrentProfile != "" {
		if _, ok := cfg.ProfileURLs()[cfg.CurrentProfile]; !ok {
			errs = append(errs, fmt.Errorf("current_profile %q is not defined", cfg.CurrentProfile))
		}
	}

	if err := serverconfig.Verify(&cfg.Gateway); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an http(s) URL", key, raw)
	}
	return nil
}
