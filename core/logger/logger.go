package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var log atomic.Pointer[slog.Logger]

func init() {
	log.Store(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

// Init replaces the default logger with one honoring the configured level.
func Init(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	log.Store(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func Debug(msg string, args ...any) {
	log.Load().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Load().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Load().Error(msg, args...)
}
