package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-engine-be/internal/bootstrap"
	"job-engine-be/internal/config"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/internal/server"
	"job-engine-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("Unable to bootstrap dependencies: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Start(ctx); err != nil {
		log.Fatalf("Unable to start background services: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("SERVER", "Graceful shutdown failed", map[string]interface{}{"error": err})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("SERVER", "Server stopped", map[string]interface{}{"error": err})
	}
}
