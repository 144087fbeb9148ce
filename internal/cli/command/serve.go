package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/guard"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/session"
	"github.com/harshitprakash/max-education-software-sub000/internal/infra/confloader"
	"github.com/harshitprakash/max-education-software-sub000/internal/infra/shutdown"
	serverconfig "github.com/harshitprakash/max-education-software-sub000/internal/server/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/server/httpserver"
	"github.com/harshitprakash/max-education-software-sub000/internal/server/localserver"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local JSON gateway for the current session",
		Description: `Serves the session, the public pages and the student portal as JSON on
a local address. Portal routes are guarded: they answer 503 while the
session is being restored and redirect to the login path when nobody is
logged in.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address (default from gateway.address)",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg := cliConfig(c)
	gw := cfg.Gateway
	if addr := c.String("address"); addr != "" {
		gw.Address = addr
	}
	if err := serverconfig.Verify(&gw); err != nil {
		return err
	}

	rt, err := GetRuntime(c)
	if err != nil {
		return err
	}
	log := rt.Logger

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Session:   rt.Session,
		Passwords: rt.Auth,
		Portal:    rt.Portal,
		Catalog:   rt.Catalog,
		Guard:     guard.New(rt.Session, gw.LoginPath),
		LoginPath: gw.LoginPath,
		Metrics:   rt.Metrics,
		Logger:    log,
	})

	srv, err := httpserver.New(gw, router, log)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", gw.Address)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	addr := ln.Addr().String()

	timeout := gw.ShutdownTimeout
	if timeout <= 0 {
		timeout = serverconfig.DefaultShutdownTimeout
	}
	sh := shutdown.NewHandler(timeout)

	unsubscribe := rt.Session.Subscribe(func(s session.State) {
		log.Info("session changed",
			"authenticated", s.IsAuthenticated,
			"loading", s.IsLoading,
			"user", s.User.DisplayName(),
		)
	})
	sh.OnShutdown(func(context.Context) error {
		unsubscribe()
		return nil
	})

	if watcher := watchConfig(c, log); watcher != nil {
		sh.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	started := time.Now()
	if ctl := startControl(c, rt, sh, func() gatewayStatus {
		state := rt.Session.State()
		return gatewayStatus{
			Address:       addr,
			TLS:           srv.TLS(),
			Profile:       rt.Profile,
			BaseURL:       rt.BaseURL,
			Authenticated: state.IsAuthenticated,
			Loading:       state.IsLoading,
			User:          state.User.DisplayName(),
			Started:       started,
			LogLevel:      logger.CurrentLevel(),
		}
	}); ctl != nil {
		sh.OnShutdown(ctl.Shutdown)
	}

	sh.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down gateway")
		return srv.Shutdown(ctx)
	})

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("gateway stopped", "error", err)
			sh.Trigger()
		}
	}()

	scheme := "http"
	if srv.TLS() {
		scheme = "https"
	}
	fmt.Fprintf(outWriter(c), "Gateway listening on %s://%s (Ctrl+C to stop)\n", scheme, addr)

	return sh.Wait(c.Context)
}

// watchConfig reloads the log level when the config file changes. It
// returns nil when there is no file to watch.
func watchConfig(c *cli.Context, log logger.Logger) *confloader.Watcher {
	path := configPath(c)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	watcher, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(log),
		confloader.WithWatcherDebounce(500*time.Millisecond),
	)
	if err != nil {
		log.Warn("config watch disabled", "error", err)
		return nil
	}
	if err := watcher.Watch(path); err != nil {
		log.Warn("config watch disabled", "error", err)
		watcher.Stop()
		return nil
	}

	watcher.OnChange(func(string) {
		if err := reloadLogLevel(c, log); err != nil {
			log.Warn("config reload failed", "error", err)
		}
	})
	watcher.StartAsync()
	return watcher
}

// reloadLogLevel applies the log level of the config file. Other settings
// take effect on the next start.
func reloadLogLevel(c *cli.Context, log logger.Logger) error {
	cfg, err := config.Load(configPath(c), nil)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	level := logger.Config{Level: cfg.Log.Level, Verbose: c.Bool("verbose")}.EffectiveLevel()
	if err := logger.SetLevel(level); err != nil {
		return err
	}
	log.Info("config reloaded", "log_level", level)
	return nil
}

// gatewayStatus is the reply of the control socket status command.
type gatewayStatus struct {
	Address       string    `json:"address"`
	TLS           bool      `json:"tls"`
	Profile       string    `json:"profile"`
	BaseURL       string    `json:"baseUrl"`
	Authenticated bool      `json:"authenticated"`
	Loading       bool      `json:"loading"`
	User          string    `json:"user,omitempty"`
	Started       time.Time `json:"started"`
	LogLevel      string    `json:"logLevel"`
}

// startControl opens the control socket. Failing to open it only disables
// remote control.
func startControl(c *cli.Context, rt *Runtime, sh *shutdown.Handler, status func() gatewayStatus) *localserver.Server {
	path := cliConfig(c).ControlSocket(configPath(c))
	if path == "" {
		return nil
	}

	srv := localserver.New(path, localserver.NewHandler(localserver.Actions{
		Status: func() any { return status() },
		Reload: func() error { return reloadLogLevel(c, rt.Logger) },
		Stop:   sh.Trigger,
	}), rt.Logger)
	if err := srv.Listen(); err != nil {
		rt.Logger.Warn("control socket disabled", "path", path, "error", err)
		return nil
	}
	go func() {
		if err := srv.Serve(); err != nil {
			rt.Logger.Warn("control socket stopped", "error", err)
		}
	}()
	return srv
}
