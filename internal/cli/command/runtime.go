package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/cli/connection"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/service"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/session"
	"github.com/harshitprakash/max-education-software-sub000/internal/infra/buildinfo"
	"github.com/harshitprakash/max-education-software-sub000/internal/infra/tlsroots"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/snapshot"
	"github.com/harshitprakash/max-education-software-sub000/internal/storage/tokenstore"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/metric"
)

// Runtime wires the client for the active profile: token store, snapshot
// database, dispatcher, services and the session context.
type Runtime struct {
	Config   *config.CLIConfig
	Profile  string
	BaseURL  string
	Logger   logger.Logger
	Metrics  *metric.Registry
	Profiles *connection.Manager

	Tokens     *tokenstore.Store
	Dispatcher *connection.Dispatcher
	Auth       *service.AuthService
	Portal     *service.PortalService
	Catalog    *service.CatalogService
	Session    *session.Context

	// KV is nil when the snapshot database could not be opened.
	KV storage.KV

	closers []func() error
}

// runtimeOptions adjust NewRuntime.
type runtimeOptions struct {
	// BaseURL replaces the profile's backend.
	BaseURL string
}

// NewRuntime builds the runtime from cfg and mounts the session context.
func NewRuntime(ctx context.Context, cfg *config.CLIConfig, log logger.Logger, opts runtimeOptions) (*Runtime, error) {
	if log == nil {
		log = logger.Default()
	}

	rt := &Runtime{
		Config:   cfg,
		Profile:  cfg.ActiveProfile(),
		BaseURL:  cfg.ActiveBaseURL(),
		Logger:   log,
		Metrics:  metric.NewRegistry(),
		Profiles: connection.NewManager(cfg.ProfileURLs()),
	}
	if opts.BaseURL != "" {
		rt.BaseURL = opts.BaseURL
	}
	if err := rt.Profiles.Connect(rt.Profile); err != nil {
		return nil, err
	}

	backend, err := tokenBackend(cfg, rt.Profile)
	if err != nil {
		return nil, err
	}
	rt.Tokens = tokenstore.New(backend, tokenstore.WithLogger(log))

	tlsConfig, err := tlsroots.ClientConfig(cfg.Server.CAFile, cfg.Server.InsecureSkipVerify)
	if err != nil {
		return nil, fmt.Errorf("server.ca_file: %w", err)
	}
	if cfg.Server.InsecureSkipVerify {
		log.Warn("TLS certificate verification is disabled")
	}

	userAgent := cfg.Server.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	endpoints := cfg.Endpoints.WithDefaults()

	rt.Dispatcher, err = connection.NewDispatcher(connection.Config{
		BaseURL:        rt.BaseURL,
		Timeout:        cfg.Server.Timeout,
		UserAgent:      userAgent,
		RefreshPath:    endpoints.Refresh,
		RefreshTimeout: cfg.Session.RefreshTimeout,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		TLSConfig:      tlsConfig,
		Metrics:        rt.Metrics,
		Logger:         log,
	}, rt.Tokens)
	if err != nil {
		return nil, err
	}

	var snapshots service.SnapshotStore
	if kv := rt.openKV(); kv != nil {
		snapshots = snapshot.NewManager(kv, rt.Profile)
	}

	rt.Auth = service.NewAuthService(rt.Dispatcher, rt.Tokens, snapshots, &service.AuthConfig{
		Endpoints:   endpoints,
		RevokeField: cfg.Session.RevokeField,
		Metrics:     rt.Metrics,
		Logger:      log,
	})
	rt.Portal = service.NewPortalService(rt.Dispatcher, endpoints)
	rt.Catalog = service.NewCatalogService(rt.Dispatcher, endpoints)

	rt.Session = session.New(rt.Auth, log)
	remove := rt.Dispatcher.OnSessionEnd(rt.Session.SessionEnded)
	rt.closers = append(rt.closers, func() error {
		remove()
		rt.Session.Close()
		return nil
	})
	rt.Session.Mount(ctx)

	log.Debug("runtime ready",
		"profile", rt.Profile,
		"base_url", rt.BaseURL,
		"authenticated", rt.Session.State().IsAuthenticated)

	return rt, nil
}

func tokenBackend(cfg *config.CLIConfig, profile string) (tokenstore.Backend, error) {
	if cfg.Session.Store == config.StoreMemory {
		return tokenstore.NewMemoryBackend(), nil
	}

	dir := cfg.Session.Dir
	if dir == "" {
		dir = tokenstore.DefaultDir()
	}
	backend, err := tokenstore.NewFileBackend(dir, profile)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return backend, nil
}

// openKV opens the snapshot database. A database that cannot be opened
// (another maxedu process holds the lock) only costs the snapshot.
func (rt *Runtime) openKV() storage.KV {
	kvConfig := storage.DefaultKVConfig(rt.Config.DataDir())
	if rt.Config.Storage.InMemory {
		kvConfig = storage.InMemoryKVConfig()
	}

	engine, err := storage.NewBadgerEngine(kvConfig, rt.Logger)
	if err != nil {
		rt.Logger.Warn("student snapshot disabled", "dir", kvConfig.Dir, "error", err)
		return nil
	}
	engine.RegisterMetrics(rt.Metrics.Prometheus())

	rt.KV = engine
	rt.closers = append(rt.closers, engine.Close)
	return engine
}

// Close releases the runtime in reverse order of construction.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
