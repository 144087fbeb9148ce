package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface handed to every maxedu component.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Accepted values of log.level and log.format.
var (
	Levels  = []string{"debug", "info", "warn", "error"}
	Formats = []string{"text", "json"}
)

// Config is the log section of the configuration plus the --verbose flag.
type Config struct {
	// Level is one of Levels. Empty means info.
	Level string
	// Format is one of Formats. Empty means text.
	Format string
	// Verbose forces the debug level.
	Verbose bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// EffectiveLevel returns the level New applies for c.
func (c Config) EffectiveLevel() string {
	switch {
	case c.Verbose:
		return "debug"
	case c.Level == "":
		return "info"
	default:
		return strings.ToLower(c.Level)
	}
}

// level is shared by every logger New builds, so SetLevel reaches loggers
// that were already handed out.
var level = new(slog.LevelVar)

type slogLogger struct {
	l *slog.Logger
}

// New builds a logger for cfg and applies its level. Every attribute passes
// through credential redaction before it reaches the output.
func New(cfg Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.EffectiveLevel())
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, opts)
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q, want one of %v", cfg.Format, Formats)
	}

	level.Set(lvl)
	return &slogLogger{l: slog.New(h)}, nil
}

// ParseLevel converts a level name.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logger: unknown level %q, want one of %v", name, Levels)
	}
}

// SetLevel changes the level of every logger built by New. It is how the
// gateway applies a reloaded config.
func SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// CurrentLevel returns the name of the active level.
func CurrentLevel() string {
	switch l := level.Level(); {
	case l <= slog.LevelDebug:
		return "debug"
	case l <= slog.LevelInfo:
		return "info"
	case l <= slog.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

type holder struct{ Logger }

var defaultLogger atomic.Pointer[holder]

func init() {
	// Until the CLI has read its config: warnings and errors on stderr.
	l, _ := New(Config{Level: "warn"})
	defaultLogger.Store(&holder{l})
}

// SetDefault replaces the logger returned by Default. A nil l is ignored.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger.Store(&holder{l})
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger.Load().Logger
}
