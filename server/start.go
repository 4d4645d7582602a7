package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/auth"
	"task-manager/config"
	"task-manager/database"
	"task-manager/email"
	"task-manager/store"
)

// InitLogger configures the process-wide structured logger
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

// StartServer runs the HTTP API until SIGINT/SIGTERM
func StartServer(cfg *config.Config) {
	logger.Info("Starting Task Manager...")

	// Initialize database
	dbConn, err := database.InitializeDatabase(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("Database initialization failed", zap.Error(err))
		os.Exit(1)
	}
	defer dbConn.Close()

	storeOpts := store.Options{BcryptCost: cfg.BcryptCost}
	notifier := email.NewNotifier(email.NewMailer(cfg))

	app := &App{
		DB:             dbConn,
		Users:          store.NewUserStore(dbConn, storeOpts),
		Tasks:          store.NewTaskStore(dbConn, storeOpts),
		Tokens:         auth.NewTokenManager(cfg.JWT),
		Notifier:       notifier,
		AvatarMaxBytes: cfg.AvatarMaxBytes,
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(NewRouter(app)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	// let queued account emails go out before the process exits
	notifier.Wait()
	logger.Info("Server stopped")
}
