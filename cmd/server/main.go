package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/logging"
	"github.com/tatianab/ripple-realms/internal/services"
	"github.com/tatianab/ripple-realms/internal/web"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.LogLevel()
	log := logging.Setup(os.Stderr, level, cfg.Log.Format)

	svc, err := services.New(cfg, log)
	if err != nil {
		fmt.Printf("Error creating services: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.New(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.System("server listening", "addr", cfg.HTTPAddr, "store", cfg.Store.Kind)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("server stopped", err)
		os.Exit(1)
	}
	logging.System("server stopped")
}
