package logger

import (
	"log/slog"
	"time"
)

// LogCommand logs a dispatcher-issued engine call.
func LogCommand(name string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Command failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Command executed", attrs...)
	}
}

// LogTick logs one macro tick for a server.
func LogTick(serverID string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "tick"),
		slog.String("server_id", serverID),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Tick failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Tick completed", attrs...)
	}
}

// LogSystem logs system events.
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events.
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
