package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpattn/engtrack/internal/app"
	"github.com/rpattn/engtrack/internal/config"
	"github.com/rpattn/engtrack/pkg/logger"
	"github.com/rpattn/engtrack/pkg/metrics"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "engtrack: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return err
	}
	log := logger.Named("server")
	if loaded {
		log.Info(ctx, "loaded config.yaml", logger.String("path", configPath))
	} else {
		log.Info(ctx, "no config.yaml found, using defaults and env vars")
	}

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	m := metrics.NewManager()
	services, err := app.NewServices(cfg, storage, logger.Get(), m)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.NewRouter(cfg, services, logger.Get(), m),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting server", logger.String("addr", cfg.Server.Addr), logger.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server exited")
	return nil
}
