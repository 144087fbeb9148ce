package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/infra/tlsroots"
	serverconfig "github.com/harshitprakash/max-education-software-sub000/internal/server/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// Server is the gateway HTTP(S) server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	certs      *tlsroots.Watcher
	logger     logger.Logger
}

// New creates a server for cfg. When TLS is configured the certificate is
// loaded now and reloaded whenever its files change.
func New(cfg serverconfig.GatewayConfig, handler http.Handler, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
		handler: handler,
		logger:  log,
	}

	if cfg.TLSEnabled() {
		certs, err := tlsroots.NewWatcher(cfg.TLSCert, cfg.TLSKey, tlsroots.WithLogger(log))
		if err != nil {
			return nil, err
		}
		s.certs = certs
		s.httpServer.TLSConfig = certs.ServerConfig()
	}

	return s, nil
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.certs != nil
}

// Serve accepts connections on ln until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("gateway listening", "address", ln.Addr().String(), "tls", s.TLS())

	if s.certs == nil {
		return s.httpServer.Serve(ln)
	}
	s.certs.StartAsync()
	// Certificates come from TLSConfig.GetCertificate.
	return s.httpServer.ServeTLS(ln, "", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.certs != nil {
		s.certs.Stop()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
