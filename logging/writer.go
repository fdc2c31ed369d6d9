package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// levelWriter writes one level's entries into daily directories under
// Config.Director, rotated by lumberjack.
type levelWriter struct {
	config  Config
	level   string
	mu      sync.RWMutex
	writers map[string]*lumberjack.Logger
}

func newLevelWriter(config Config, level string) *levelWriter {
	return &levelWriter{
		config:  config,
		level:   level,
		writers: make(map[string]*lumberjack.Logger),
	}
}

// Write implements io.Writer.
func (w *levelWriter) Write(p []byte) (n int, err error) {
	date := time.Now().Format("2006-01-02")
	return w.getWriter(date).Write(p)
}

// Sync implements zapcore.WriteSyncer. lumberjack writes through on every call.
func (w *levelWriter) Sync() error {
	return nil
}

func (w *levelWriter) getWriter(date string) *lumberjack.Logger {
	w.mu.RLock()
	if writer, ok := w.writers[date]; ok {
		w.mu.RUnlock()
		return writer
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	if writer, ok := w.writers[date]; ok {
		return writer
	}

	// the previous day's file is finished once the date rolls over
	for old, writer := range w.writers {
		_ = writer.Close()
		delete(w.writers, old)
	}

	dirPath := filepath.Join(w.config.Director, date)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		dirPath = w.config.Director
		_ = os.MkdirAll(dirPath, 0755)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dirPath, w.level+".log"),
		MaxSize:    w.config.MaxSize,
		MaxBackups: w.config.MaxBackups,
		MaxAge:     w.config.MaxAge,
		Compress:   w.config.Compress,
		LocalTime:  true,
	}
	w.writers[date] = writer
	return writer
}

// Close closes all writers.
func (w *levelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var lastErr error
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil {
			lastErr = err
		}
	}
	w.writers = make(map[string]*lumberjack.Logger)
	return lastErr
}

var (
	writerRegistry   []*levelWriter
	writerRegistryMu sync.Mutex
)

func registerWriter(w *levelWriter) {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()
	writerRegistry = append(writerRegistry, w)
}

// CloseAllWriters closes every log file opened by loggers created so far.
func CloseAllWriters() error {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()

	var lastErr error
	for _, w := range writerRegistry {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	writerRegistry = nil
	return lastErr
}

func terminalSink(config Config) io.Writer {
	if config.Output != nil {
		return config.Output
	}
	return os.Stderr
}

// getWriteSyncer combines the terminal sink and the level file, whichever are enabled.
func getWriteSyncer(config Config, level string) zapcore.WriteSyncer {
	var syncers []zapcore.WriteSyncer

	if config.LogInTerminal {
		syncers = append(syncers, zapcore.AddSync(terminalSink(config)))
	}
	if config.Director != "" {
		fileWriter := newLevelWriter(config, level)
		registerWriter(fileWriter)
		syncers = append(syncers, fileWriter)
	}

	return zapcore.NewMultiWriteSyncer(syncers...)
}

var _ io.WriteCloser = (*levelWriter)(nil)
