package main

import (
	"bengaliboutique_server/api"
	"bengaliboutique_server/config"
	"bengaliboutique_server/database"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

var logger *gecho.Logger
var cfg *structs.Config

// init function to load environment variables and initialize logger and database
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}

	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}
}

func main() {
	sm := services.NewServiceManager(config.NewLogger(true), cfg, database.GetInstance())

	srv := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(cfg, sm),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Setup graceful shutdown BEFORE starting the server
	done := setupGracefulShutdown(logger, srv, sm)

	logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server", gecho.Field("error", err))
		os.Exit(1)
	}

	<-done
}

// setupGracefulShutdown drains in-flight requests on SIGINT/SIGTERM, then
// closes the Kafka writer, the Redis pool and the database.
func setupGracefulShutdown(logger *gecho.Logger, srv *http.Server, sm *services.ServiceManager) <-chan struct{} {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	logger.Info("Graceful shutdown handler initialized")

	go func() {
		defer close(done)

		sig := <-c
		logger.Info("Received shutdown signal", gecho.Field("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown did not complete", gecho.Field("error", err))
		}
		if err := sm.Close(); err != nil {
			logger.Error("Failed to close services", gecho.Field("error", err))
		}
		if err := database.Close(); err != nil {
			logger.Error("Failed to close database", gecho.Field("error", err))
		}
	}()

	return done
}
