package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()

	srv := server.NewHTTPServer(server.Addr(cfg.Port), app.Router)
	if err := server.Serve(ctx, srv, cfg.ShutdownTimeout); err != nil {
		telemetry.Error("server.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
