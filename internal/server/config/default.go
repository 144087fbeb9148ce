package config

import "time"

// Default configuration values.
const (
	DefaultAddress   = "127.0.0.1:5080"
	DefaultLoginPath = "/login"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Default returns the default gateway configuration.
func Default() GatewayConfig {
	return GatewayConfig{
		Address:         DefaultAddress,
		LoginPath:       DefaultLoginPath,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}
