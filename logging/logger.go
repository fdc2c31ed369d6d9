package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes leveled, structured entries.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	// Named returns a child whose entries carry name after the parent's.
	Named(name string) Logger

	// Sync flushes buffered entries; call it before the process exits.
	Sync() error
}

type zapLogger struct {
	zl *zap.Logger
}

// NewLogger builds a Logger teeing every enabled sink in config.
// With no sink enabled the returned logger discards everything.
func NewLogger(config Config) Logger {
	config.applyDefaults()
	if !config.Enabled() {
		return Nop()
	}

	zl := zap.New(zapcore.NewTee(getZapCores(config)...))
	if config.ShowLineNumber {
		zl = zl.WithOptions(zap.AddCaller(), zap.AddCallerSkip(1))
	}
	return &zapLogger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zapLogger{zl: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.zl.Debug(msg, fields...) }

func (l *zapLogger) Info(msg string, fields ...zap.Field) { l.zl.Info(msg, fields...) }

func (l *zapLogger) Warn(msg string, fields ...zap.Field) { l.zl.Warn(msg, fields...) }

func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.zl.Error(msg, fields...) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{zl: l.zl.Named(name)}
}

func (l *zapLogger) Sync() error {
	return l.zl.Sync()
}

var _ Logger = (*zapLogger)(nil)
