package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/reckon/cli"
	"github.com/ardnew/reckon/log"
)

func main() {
	if err := cli.Run(context.Background(), os.Exit, os.Args[1:]...); err != nil {
		// The error implements LogValue, so slog expands its details.
		log.Error("exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}
