package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/config"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/infra/buildinfo"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// Metadata keys of the cli.App.
const (
	metaConfig     = "config"
	metaConfigPath = "configPath"
	metaLogger     = "logger"
	metaRuntime    = "runtime"
	metaServerURL  = "serverURL"
	metaInShell    = "inShell"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:                 "maxedu",
		Usage:                "Max Education student portal client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			StatusCommand(),
			RefreshCommand(),
			PasswdCommand(),
			ProfileCommand(),
			CoursesCommand(),
			FeesCommand(),
			CertificatesCommand(),
			CatalogCommand(),
			VerifyCommand(),
			ContactCommand(),
			ConfigCommand(),
			ServeCommand(),
			GatewayCommand(),
			ShellCommand(),
			VersionCommand(),
		},
		Before:         before,
		After:          after,
		ExitErrHandler: exitErrHandler,
		Metadata:       map[string]any{},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"MAXEDU_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Portal backend URL (e.g., https://portal.example.edu)",
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"P"},
			Usage:   "Backend profile to use",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// before loads the configuration and sets up logging. Commands run from
// the interactive shell reuse the shell's setup.
func before(c *cli.Context) error {
	if _, ok := c.App.Metadata[metaConfig]; ok {
		return nil
	}

	overrides := map[string]any{}
	if server := c.String("server"); server != "" {
		overrides["server.base_url"] = server
		c.App.Metadata[metaServerURL] = server
	}
	if profile := c.String("profile"); profile != "" {
		overrides["current_profile"] = profile
	}

	path := c.String("config")
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return err
	}
	// The config commands must still run so a broken file can be repaired.
	if err := config.Validate(cfg); err != nil && !tolerantCommands[c.Args().First()] {
		return fmt.Errorf("invalid configuration %s:\n%w", path, err)
	}

	logCfg := logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: c.Bool("verbose"),
		Output:  c.App.ErrWriter,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		if !tolerantCommands[c.Args().First()] {
			return err
		}
		// Only reachable with a broken log section that config must repair.
		log, err = logger.New(logger.Config{Verbose: logCfg.Verbose, Output: logCfg.Output})
		if err != nil {
			return err
		}
	}
	logger.SetDefault(log)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaConfigPath] = path
	c.App.Metadata[metaLogger] = log
	return nil
}

var tolerantCommands = map[string]bool{"config": true, "version": true, "help": true, "h": true}

// after releases the runtime unless the shell still needs it.
func after(c *cli.Context) error {
	if inShell(c) {
		return nil
	}
	rt, ok := c.App.Metadata[metaRuntime].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaRuntime)
	return rt.Close()
}

// exitErrHandler prints err for the user. The shell prints its own errors.
func exitErrHandler(c *cli.Context, err error) {
	if err == nil || inShell(c) {
		return
	}
	fmt.Fprintf(errWriter(c), "Error: %s\n", errorMessage(err))
}

// errorMessage returns the text shown for err. Backend failures surface
// only their fixed user message; local errors (flags, configuration) are
// shown as they are.
func errorMessage(err error) string {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}
	msg := domain.UserMessage(err)
	for _, target := range loginHinted {
		if errors.Is(err, target) {
			return msg + " Run 'maxedu login'."
		}
	}
	return msg
}

// loginHinted are the errors after which the user has to log in again.
var loginHinted = []error{
	domain.ErrLoginRequired,
	domain.ErrSessionExpired,
	domain.ErrUnauthorized,
	domain.ErrRefreshRejected,
	domain.ErrNoRefreshToken,
}

func inShell(c *cli.Context) bool {
	v, _ := c.App.Metadata[metaInShell].(bool)
	return v
}

// cliConfig returns the configuration loaded by before.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func configPath(c *cli.Context) string {
	if path, ok := c.App.Metadata[metaConfigPath].(string); ok && path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

func cliLogger(c *cli.Context) logger.Logger {
	if log, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		return log
	}
	return logger.Default()
}

// GetRuntime returns the runtime, building it on first use.
func GetRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[metaRuntime].(*Runtime); ok {
		return rt, nil
	}

	server, _ := c.App.Metadata[metaServerURL].(string)
	rt, err := NewRuntime(c.Context, cliConfig(c), cliLogger(c), runtimeOptions{BaseURL: server})
	if err != nil {
		return nil, err
	}
	c.App.Metadata[metaRuntime] = rt
	return rt, nil
}

func outWriter(c *cli.Context) io.Writer {
	return c.App.Writer
}

func errWriter(c *cli.Context) io.Writer {
	return c.App.ErrWriter
}

// reloadConfig re-reads the configuration after a command changed it. Only
// the shell outlives such a change, so elsewhere this is a no-op. The
// runtime is rebuilt on next use.
func reloadConfig(c *cli.Context) error {
	if !inShell(c) {
		return nil
	}

	cfg, err := config.Load(configPath(c), nil)
	if err != nil {
		return err
	}
	c.App.Metadata[metaConfig] = cfg

	rt, ok := c.App.Metadata[metaRuntime].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaRuntime)
	return rt.Close()
}
