package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/anchorapp/journal/internal/buildinfo"
	"github.com/anchorapp/journal/internal/cli"
	"github.com/anchorapp/journal/internal/config"
	"github.com/anchorapp/journal/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
