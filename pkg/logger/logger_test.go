package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// setSingletonForTest temporarily replaces the singleton logger with one
// writing to buf and restores the original when the test completes.
func setSingletonForTest(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	encoderCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), zapcore.DebugLevel)
	prev := singleton.Load()
	singleton.Store(zap.New(core).Sugar())
	t.Cleanup(func() { singleton.Store(prev) })
}

func TestLogLevels(t *testing.T) { //nolint:paralleltest // mutates singleton
	tests := []struct {
		name     string
		logFn    func()
		contains string
	}{
		{"Debug", func() { Debug("debug msg") }, "debug msg"},
		{"Debugf", func() { Debugf("debug %s", "formatted") }, "debug formatted"},
		{"Debugw", func() { Debugw("debug kv", "key", "val") }, "debug kv"},
		{"Info", func() { Info("info msg") }, "info msg"},
		{"Infof", func() { Infof("info %s", "formatted") }, "info formatted"},
		{"Infow", func() { Infow("info kv", "key", "val") }, "info kv"},
		{"Warn", func() { Warn("warn msg") }, "warn msg"},
		{"Warnf", func() { Warnf("warn %s", "formatted") }, "warn formatted"},
		{"Warnw", func() { Warnw("warn kv", "key", "val") }, "warn kv"},
		{"Error", func() { Error("error msg") }, "error msg"},
		{"Errorf", func() { Errorf("error %s", "formatted") }, "error formatted"},
		{"Errorw", func() { Errorw("error kv", "key", "val") }, "error kv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			setSingletonForTest(t, buf)
			tt.logFn()
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"not-a-level", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parseLevel(tt.raw))
		})
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()
	got, err := parseBool("true")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = parseBool("false")
	require.NoError(t, err)
	assert.False(t, got)

	_, err = parseBool("not-a-bool")
	assert.Error(t, err)
}

func TestDefaultLoggerIsJSON(t *testing.T) {
	t.Setenv("MCP_LOG_LEVEL", "debug")
	t.Setenv("UNSTRUCTURED_LOGS", "false")
	// With UNSTRUCTURED_LOGS=false newDefaultLogger picks the JSON encoder.
	require.False(t, unstructuredLogs())

	buf := &bytes.Buffer{}
	encoderCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), zapcore.DebugLevel)
	l := zap.New(core).Sugar()
	l.Info("hello")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
}
