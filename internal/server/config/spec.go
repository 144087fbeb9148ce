package config

import "time"

// GatewayConfig configures the local JSON gateway started by "maxedu serve".
type GatewayConfig struct {
	// Address is the TCP listen address.
	Address string `koanf:"address" yaml:"address"`

	// LoginPath is where the route guard sends unauthenticated visitors.
	LoginPath string `koanf:"login_path" yaml:"login_path"`

	// TLSCert and TLSKey enable HTTPS. Both or neither must be set; the pair
	// is reloaded when either file changes.
	TLSCert string `koanf:"tls_cert" yaml:"tls_cert,omitempty"`
	TLSKey  string `koanf:"tls_key" yaml:"tls_key,omitempty"`

	// ControlSocket is the Unix socket of the local control server. Empty
	// uses gateway.sock next to the config file; "-" disables it.
	ControlSocket string `koanf:"control_socket" yaml:"control_socket,omitempty"`

	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c *GatewayConfig) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// ControlSocketDisabled turns the control socket off.
const ControlSocketDisabled = "-"
