// Package log provides the structured logging interface used across the
// regression pipeline.
//
// The interface is slog-compatible so callers write key/value pairs, while the
// default implementation is backed by zerolog. Standard attribute keys live
// in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("resample").With(
//	    log.RunIDKey, runID,
//	)
//	logger.Info("Resampling started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1200,
//	    log.FeaturesKey, 48,
//	)
package log

import (
	"context"
	"strings"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error treats a leading error value
// specially: it is logged under ErrAttrKey together with its stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information, such as per-iteration fits.
	Debug(msg string, fields ...any)

	// Info logs general progress of the pipeline.
	Info(msg string, fields ...any)

	// Warn logs recoverable problems, such as a dropped degenerate fit.
	Warn(msg string, fields ...any)

	// Error logs a failure.
	//
	//	logger.Error("Training failed", err,
	//	    log.OperationKey, log.OperationFit,
	//	)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log-level", "unknown log level", level)
	}
}

// LoggerProvider creates loggers. It allows tests to inject a capturing logger.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}
