// Package logger provides the package-level structured logger used across
// the Splunk MCP server: an atomically-swapped singleton (so tests can
// install a capturing logger without a global mutex), its level and
// encoding controlled entirely by environment variables, backed directly
// by go.uber.org/zap.
package logger

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// singleton holds the active *zap.SugaredLogger. It is swapped atomically
// so tests can install a capturing logger without a global mutex.
var singleton atomic.Pointer[zap.SugaredLogger]

func init() {
	singleton.Store(newDefaultLogger())
}

// newDefaultLogger builds a logger whose level is controlled by
// MCP_LOG_LEVEL (debug|info|warn|error, default info) and whose encoding
// is human-readable console output unless UNSTRUCTURED_LOGS is set to a
// recognized falsy value, in which case it is JSON.
func newDefaultLogger() *zap.SugaredLogger {
	level := parseLevel(os.Getenv("MCP_LOG_LEVEL"))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if unstructuredLogs() {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.TimeKey = "ts"
		encoder = zapcore.NewConsoleEncoder(consoleCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// unstructuredLogs reports whether UNSTRUCTURED_LOGS requests
// human-readable console output. Any unparseable value defaults to true.
func unstructuredLogs() bool {
	raw, ok := os.LookupEnv("UNSTRUCTURED_LOGS")
	if !ok {
		return true
	}
	b, err := parseBool(raw)
	if err != nil {
		return true
	}
	return b
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, errInvalidBool
	}
}

var errInvalidBool = errors.New("invalid boolean value")

func get() *zap.SugaredLogger {
	return singleton.Load()
}

// Debug logs at debug level.
func Debug(args ...any) { get().Debug(args...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { get().Debugf(format, args...) }

// Debugw logs a message with structured key/value pairs at debug level.
func Debugw(msg string, kv ...any) { get().Debugw(msg, kv...) }

// Info logs at info level.
func Info(args ...any) { get().Info(args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { get().Infof(format, args...) }

// Infow logs a message with structured key/value pairs at info level.
func Infow(msg string, kv ...any) { get().Infow(msg, kv...) }

// Warn logs at warn level.
func Warn(args ...any) { get().Warn(args...) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) { get().Warnf(format, args...) }

// Warnw logs a message with structured key/value pairs at warn level.
func Warnw(msg string, kv ...any) { get().Warnw(msg, kv...) }

// Error logs at error level.
func Error(args ...any) { get().Error(args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { get().Errorf(format, args...) }

// Errorw logs a message with structured key/value pairs at error level.
func Errorw(msg string, kv ...any) { get().Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync() error {
	return get().Sync()
}
