// Package observability holds the process-wide loggers.
//
// Two loggers are exposed: CLILogger for human-facing console output
// from commands, and ServiceLogger for structured JSON output from
// long-running serve mode. Both default to safe no-op-ish consoles
// until Init is called from the root command.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging profiles.
const (
	// ProfileCLI is console encoding on stderr, for interactive use.
	ProfileCLI = "cli"

	// ProfileStructured is JSON encoding on stderr, for serve mode.
	// Stderr keeps the stdio MCP channel on stdout clean.
	ProfileStructured = "structured"
)

// CLILogger is the human-facing logger used by commands.
var CLILogger = newConsoleLogger(zapcore.InfoLevel)

// ServiceLogger is the structured logger used by serve mode and
// handed to the splunk client.
var ServiceLogger = newJSONLogger(zapcore.InfoLevel)

// Init rebuilds the package loggers from configuration. profile is
// one of ProfileCLI or ProfileStructured and selects which logger the
// commands treat as primary encoding; both loggers always exist.
func Init(level, profile string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	CLILogger = newConsoleLogger(parsed)
	ServiceLogger = newJSONLogger(parsed)
	if profile == ProfileStructured {
		CLILogger = ServiceLogger
	}
	return nil
}

// Sync flushes both loggers. Called on process exit; errors are
// ignored because stderr sync is unreliable on some platforms.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServiceLogger.Sync()
}

func newConsoleLogger(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

func newJSONLogger(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
