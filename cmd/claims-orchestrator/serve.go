// cmd/claims-orchestrator/serve.go
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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dental-claims/internal/api"
	"dental-claims/internal/common/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the claim intake API, health checks and metrics",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	zapLog, err := newZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, zapLog, "http")
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewServer(api.Config{
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	}, a.pipeline, a.store, a.checks, a.log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("Shutting down HTTP server...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	zapLog.Info("HTTP server stopped")
	return nil
}
