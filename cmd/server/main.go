package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/offbeatoasis/oasis/internal/app"
	"github.com/offbeatoasis/oasis/internal/config"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("oasis: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: application.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Printf("Listening on :%s (data source: %s)", cfg.Server.Port, cfg.Data.Source)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	for {
		select {
		case err := <-serveErr:
			return err
		case <-reload:
			// SIGHUP swaps in a fresh dataset without dropping
			// connections; a failed reload keeps the current one.
			if err := application.RefreshData(context.Background()); err != nil {
				log.Printf("Dataset reload failed: %v", err)
			}
		case sig := <-quit:
			log.Printf("Received %s, shutting down", sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
			}
			return application.Shutdown(ctx)
		}
	}
}
