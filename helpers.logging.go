package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LoggerContextKey ContextKey = "request.logger"

	megabyte = 1 << 20
)

// LogFileWriter is the zap.WriteSyncer behind the catalog logs. It opens a new
// file named after the clock once the current one would exceed the max size.
type LogFileWriter struct {
	mu      sync.Mutex
	clock   Clocker
	folder  string
	isProd  bool
	limit   int64
	file    *os.File
	written int64
	rotated int
}

// NewLogFileWriter sizes files from the `log_max_size` setting in megabytes.
// A non positive value disables the rotation.
func NewLogFileWriter(config *Config, clock Clocker) *LogFileWriter {
	return &LogFileWriter{
		clock:  clock,
		folder: config.LogFolder,
		isProd: config.IsProduction,
		limit:  int64(config.LogMaxSize) * megabyte,
	}
}

// Write appends p to the current file, rotating first when needed. An entry
// bigger than a whole file is rejected.
func (lw *LogFileWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	size := int64(len(p))
	if lw.limit > 0 && size > lw.limit {
		return 0, fmt.Errorf("logging: entry of %d bytes exceeds max file size of %d bytes", size, lw.limit)
	}
	if lw.file == nil || (lw.limit > 0 && lw.written+size > lw.limit) {
		if err := lw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := lw.file.Write(p)
	lw.written += int64(n)
	return n, err
}

// rotate must be called with the lock held.
func (lw *LogFileWriter) rotate() error {
	if lw.file != nil {
		if err := lw.file.Close(); err != nil {
			return fmt.Errorf("logging: close %s: %w", lw.file.Name(), err)
		}
		lw.rotated++
	}
	path := CreateLogFilePath(lw.folder, lw.isProd, lw.clock.Now())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", path, err)
	}
	lw.file, lw.written = file, 0
	return nil
}

// Rotations returns how many files were closed because they were full.
func (lw *LogFileWriter) Rotations() int {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.rotated
}

func (lw *LogFileWriter) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	return lw.file.Sync()
}

func (lw *LogFileWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	err := lw.file.Close()
	lw.file = nil
	return err
}

// consoleSyncer skips Sync on the terminal, which fails on some platforms.
type consoleSyncer struct {
	io.Writer
}

func (consoleSyncer) Sync() error { return nil }

func newEncoderConfig(isProd bool) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	if isProd {
		ec = zap.NewProductionEncoderConfig()
	}
	ec.TimeKey = "ts"
	ec.LevelKey = "lvl"
	ec.NameKey = "name"
	ec.MessageKey = "msg"
	ec.CallerKey = "caller"
	ec.StacktraceKey = "skt"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}

// SetupLogging writes JSON entries to the log file and, outside production,
// a console rendering to stdout. Every entry is tagged with the build values
// and the storage backend serving the catalog. The returned func flushes.
func SetupLogging(config *Config, w zapcore.WriteSyncer, clock TickerClocker) (*zap.Logger, func() error) {
	ec := newEncoderConfig(config.IsProduction)
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(ec), w, config.LogLevel)}
	if !config.IsProduction {
		console := zapcore.Lock(consoleSyncer{os.Stdout})
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), console, config.LogLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.FatalLevel),
		zap.WithClock(clock),
	).With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
		zap.String("app.storage", config.Storage.Backend),
	)

	flusher := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}
	return logger, flusher
}

// GetLoggerFromContext returns the request scoped logger or the app one.
func (api *APIHandler) GetLoggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger); ok {
		return logger
	}
	return api.logger
}

// CreateLogFilePath names a log file after t and the environment.
func CreateLogFilePath(folder string, isProd bool, t time.Time) string {
	env := "dev"
	if isProd {
		env = "prod"
	}
	return filepath.Join(folder, t.Format("20060102.150405")+"."+env+".log")
}
