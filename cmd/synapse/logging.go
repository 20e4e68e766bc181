package main

import (
	"log/slog"
	"os"
)

// setupLogger builds the process logger. "json" format matches cliFormat so
// a machine consumer parsing --cli-format=json startup/shutdown lines can
// also parse the log stream; "human" uses slog's text handler.
func setupLogger(cliFormat string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if cliFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler).With("service", appName, "version", version, "pid", os.Getpid())
}
