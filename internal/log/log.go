// Package log sets up the slog default logger and carries loggers through
// contexts.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jakopako/storesnap/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// GetLogLevel returns the level matching config.Debug.
func GetLogLevel() slog.Level {
	if config.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitializeDefaultLogger installs a text handler writing to w as the
// default logger.
func InitializeDefaultLogger(w io.Writer) {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: GetLogLevel()}))
	slog.SetDefault(logger)
}

// Output returns the writer diagnostic logs should go to. With a log file
// configured this is a size rotated file, otherwise stderr. The returned
// closer must be called on shutdown.
func Output(lc config.LogConfig) io.WriteCloser {
	if lc.File == "" {
		return nopCloser{os.Stderr}
	}
	return &lumberjack.Logger{
		Filename:   lc.File,
		MaxSize:    lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, config.LoggerCtxKey, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(config.LoggerCtxKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
