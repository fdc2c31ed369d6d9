package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Director != "" {
		t.Errorf("expected empty Director, got '%s'", cfg.Director)
	}
	if cfg.Level != "info" {
		t.Errorf("expected Level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected Format 'console', got '%s'", cfg.Format)
	}
	if cfg.Enabled() {
		t.Error("expected default config to have no sink")
	}
}

func TestConfigTransportLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"dpanic", zapcore.DPanicLevel},
		{"panic", zapcore.PanicLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Level: tt.level}
			if got := cfg.TransportLevel(); got != tt.expected {
				t.Errorf("TransportLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfigZapEncodeLevel(t *testing.T) {
	for _, name := range []string{
		"LowercaseLevelEncoder",
		"LowercaseColorLevelEncoder",
		"CapitalLevelEncoder",
		"CapitalColorLevelEncoder",
		"unknown",
	} {
		cfg := Config{EncodeLevel: name}
		if cfg.ZapEncodeLevel() == nil {
			t.Errorf("ZapEncodeLevel(%s) returned nil", name)
		}
	}
}

func TestNewLoggerWithoutSinkDiscards(t *testing.T) {
	logger := NewLogger(DefaultConfig())
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	if logger.(*zapLogger).zl.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without sink should not enable any level")
	}
	logger.Info("dropped")
}

func TestNewLoggerTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogInTerminal = true
	cfg.Output = &buf
	cfg.Level = "debug"

	logger := NewLogger(cfg).Named("resizer")
	logger.Debug("scanline written", zap.Int("row", 3))
	logger.Info("scaled", zap.Int("factor", 4))

	out := buf.String()
	if !strings.Contains(out, "scanline written") || !strings.Contains(out, `"row": 3`) {
		t.Errorf("debug entry missing from output: %q", out)
	}
	if !strings.Contains(out, "scaled") || !strings.Contains(out, `"factor": 4`) {
		t.Errorf("info entry missing from output: %q", out)
	}
	if !strings.Contains(out, "resizer") {
		t.Errorf("logger name missing from output: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogInTerminal = true
	cfg.Output = &buf
	cfg.Level = "warn"

	logger := NewLogger(cfg)
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn entry should be written")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogInTerminal = true
	cfg.Output = &buf
	cfg.Format = "json"

	NewLogger(cfg).Info("test message", zap.String("key", "value"))

	output := buf.String()
	if !strings.Contains(output, `"message":"test message"`) {
		t.Errorf("JSON output should contain message field, got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("JSON output should contain key field, got: %s", output)
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Director = dir

	logger := NewLogger(cfg)
	logger.Error("cannot open source", zap.Error(os.ErrNotExist))
	if err := CloseAllWriters(); err != nil {
		t.Fatalf("CloseAllWriters: %v", err)
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02"), "error.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file %s: %v", path, err)
	}
	if !strings.Contains(string(data), "cannot open source") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestLevelWriter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Director = t.TempDir()

	writer := newLevelWriter(cfg, "info")

	n, err := writer.Write([]byte("test log line\n"))
	if err != nil {
		t.Errorf("Write failed: %v", err)
	}
	if n == 0 {
		t.Error("Write should return bytes written")
	}
	if err := writer.Sync(); err != nil {
		t.Errorf("Sync failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestGlobalLogger(t *testing.T) {
	if Global() == nil {
		t.Fatal("Global() returned nil")
	}

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogInTerminal = true
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { SetGlobal(Nop()) })

	Info("global entry")
	Named("pkg").Warn("named entry")

	if !strings.Contains(buf.String(), "global entry") || !strings.Contains(buf.String(), "named entry") {
		t.Errorf("global logger output missing entries: %q", buf.String())
	}
}

func TestContextLoggerStorage(t *testing.T) {
	logger := Nop()
	ctx := ToContext(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("FromContext should return the stored logger")
	}
	if FromContext(context.Background()) != Global() {
		t.Error("FromContext without a logger should fall back to the global logger")
	}
}

func TestCusTimeEncoder(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogInTerminal = true
	cfg.Output = &buf
	cfg.Prefix = "[bmpscale] "

	NewLogger(cfg).Info("with prefix")

	if !strings.HasPrefix(buf.String(), "[bmpscale] ") {
		t.Errorf("expected time prefix, got %q", buf.String())
	}
}
