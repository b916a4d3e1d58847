package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futuresBot/config"
	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/api"
	"futuresBot/internal/bootstrap"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Wire adapters, strategy and the trading service
	bot, err := bootstrap.NewBot(cfg, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize bot")
		log.Fatalf("FATAL: Failed to initialize bot: %v", err)
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Startup hook
	if err := bot.Service.Startup(ctx); err != nil {
		appLogger.Warn(ctx, "Startup hook failed, continuing", map[string]interface{}{"error": err.Error()})
	}

	// 5. HTTP surface
	if cfg.LogLevel != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(bot.Service, bot.Repo, bot.Repo, appLogger)
	router := api.NewRouter(&api.Config{Handler: handler, Logger: appLogger})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		appLogger.Info(context.Background(), "Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(context.Background(), err, "HTTP server failed")
		}
	}

	// 6. Graceful shutdown: stop taking requests, then flatten.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, err, "HTTP server shutdown failed")
	}
	bot.Service.Shutdown(shutdownCtx)

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
