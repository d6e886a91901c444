package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext is cancelled on SIGINT or SIGTERM, which aborts any
// download in progress.
func SignalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

// Fatal logs the failure and exits with status 1.
func Fatal(message string, err error) {
	attrs := []any{}
	if err != nil {
		attrs = append(attrs, "err", err.Error())
	}
	slog.Error(message, attrs...)
	os.Exit(1)
}
