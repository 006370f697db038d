package main

import (
	"log/slog"
	"os"

	"github.com/ericfisherdev/localreview/internal/cli"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("LOCALREVIEW_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	os.Exit(cli.Run())
}
