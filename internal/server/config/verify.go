package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// Verify validates the gateway configuration.
func Verify(cfg *GatewayConfig) error {
	if cfg.Address == "" {
		return errors.New("gateway.address is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf("gateway.address %q: %w", cfg.Address, err)
	}

	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return fmt.Errorf("gateway.login_path %q must start with /", cfg.LoginPath)
	}

	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return errors.New("gateway.tls_cert and gateway.tls_key must be set together")
	}
	for _, f := range []string{cfg.TLSCert, cfg.TLSKey} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("gateway tls file: %w", err)
		}
	}

	if cfg.ShutdownTimeout < 0 {
		return errors.New("gateway.shutdown_timeout must not be negative")
	}
	return nil
}
