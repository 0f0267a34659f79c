package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "console to stdout", cfg: Config{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "json to stderr", cfg: Config{Level: "info", Format: "json", Output: "stderr"}},
		{name: "empty config gets defaults", cfg: Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.NotPanics(t, func() {
				log.Info("startup check")
			})
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestNewWriter(t *testing.T) {
	assert.NotNil(t, newWriter("stdout"))
	assert.NotNil(t, newWriter("STDERR"))
	assert.NotNil(t, newWriter(""))
}

func TestNewWriterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	writer := newWriter(path)
	_, err := writer.Write([]byte("line\n"))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewWriterUnopenableFileFallsBackToStdout(t *testing.T) {
	writer := newWriter(filepath.Join(t.TempDir(), "missing-dir", "app.log"))
	assert.NotNil(t, writer)
}
