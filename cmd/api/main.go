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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/voiceflow-enquiry/cmd/mainconfig"
	"github.com/wolfman30/voiceflow-enquiry/internal/api/router"
	appconfig "github.com/wolfman30/voiceflow-enquiry/internal/config"
	"github.com/wolfman30/voiceflow-enquiry/internal/enquiry"
	"github.com/wolfman30/voiceflow-enquiry/internal/observability/metrics"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

func main() {
	// A local .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voiceflow enquiry API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	srv, err := newServer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build dispatcher", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// newServer assembles the metrics registry, dispatcher and router behind an
// http.Server.
func newServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	relayMetrics := metrics.NewRelayMetrics(registry)

	dispatcher, err := mainconfig.BuildDispatcher(ctx, cfg, relayMetrics, logger)
	if err != nil {
		return nil, err
	}

	r := router.New(&router.Config{
		Logger:             logger,
		EnquiryHandler:     enquiry.NewHandler(dispatcher, relayMetrics, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// WriteTimeout leaves room for both provider calls to settle.
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OutboundTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}
