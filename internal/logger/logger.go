// Package logger builds the process logger from the logging config.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cinematch/cinematch/internal/config"
)

const (
	serviceName = "cinematch"
	logFileName = "cinematch.log"
)

// apiKeyParam matches the TMDB credential wherever a URL ends up in a log line.
var apiKeyParam = regexp.MustCompile(`(api_key=)[^&"\s\\]+`)

// Logger is the process logger. Close flushes the rotating file, if any.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Option adjusts how New builds the logger.
type Option func(*options)

type options struct {
	out       io.Writer
	developer bool
}

// WithOutput sends console output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithDeveloperMode lowers the level to debug unless trace is configured.
func WithDeveloperMode(on bool) Option {
	return func(o *options) { o.developer = on }
}

// New creates the logger described by cfg. Every line carries the service
// name and has TMDB API keys masked before it reaches any sink.
func New(cfg config.LoggingConfig, opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	var console io.Writer = o.out
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: o.out, TimeFormat: time.RFC3339}
	}

	output := console
	var rotator *lumberjack.Logger
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err == nil {
			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Path, logFileName),
				MaxSize:    positiveOr(cfg.MaxSizeMB, 10),
				MaxBackups: positiveOr(cfg.MaxBackups, 5),
				MaxAge:     positiveOr(cfg.MaxAgeDays, 30),
				Compress:   cfg.Compress,
				LocalTime:  true,
			}
			output = io.MultiWriter(console, rotator)
		}
	}

	level := ParseLevel(cfg.Level)
	if o.developer && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(redactor{w: output}).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: log, rotator: rotator}
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// WithComponent returns a child logger tagged with component.
func (l *Logger) WithComponent(component string) zerolog.Logger {
	return l.Logger.With().Str("component", component).Logger()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}

// redactor masks API keys in each encoded log line.
type redactor struct {
	w io.Writer
}

func (r redactor) Write(p []byte) (int, error) {
	if _, err := r.w.Write(apiKeyParam.ReplaceAll(p, []byte("${1}REDACTED"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
