// cmd/claims-orchestrator/worker.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dental-claims/internal/common/camunda"
	pci "dental-claims/internal/workers/claims/process-claim-intent"
)

var metricsAddr string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the process-claim-intent Zeebe job worker",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address for /health, /ready and /metrics")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if !cfg.Camunda.Enabled {
		return fmt.Errorf("camunda.enabled must be true to run the job worker")
	}
	zapLog, err := newZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer zapLog.Sync()

	zapLog.Info("Starting claim worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, zapLog, "zeebe")
	if err != nil {
		return err
	}
	defer a.Close()

	zeebe, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return fmt.Errorf("zeebe client failed: %w", err)
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	jobWorker := camunda.NewWorker(zeebe.GetClient(), pci.TaskType, cfg.Camunda.MaxJobsActive, a.pipeline, a.log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		zapLog.Info("Metrics server listening", zap.String("addr", metricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutting down gracefully...")

	jobWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	zapLog.Info("Worker stopped")
	return nil
}
