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
	_ "time/tzdata" // embedded zoneinfo for CALENDAR_TIMEZONE

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luciene-trg/agenda-backend/internal/api/router"
	"github.com/luciene-trg/agenda-backend/internal/app/bootstrap"
	appconfig "github.com/luciene-trg/agenda-backend/internal/config"
	"github.com/luciene-trg/agenda-backend/internal/observability/metrics"
	"github.com/luciene-trg/agenda-backend/internal/payments"
	"github.com/luciene-trg/agenda-backend/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agenda backend",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildHandler wires every collaborator from cfg. Collaborators without
// credentials are replaced by disabled implementations so the server still
// starts.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	store, cleanup, err := bootstrap.BuildBookingStore(ctx, cfg, logger.Component("store"))
	if err != nil {
		return nil, func() {}, err
	}

	metricsHandler, bookingMetrics := setupMetrics()
	gateway := bootstrap.BuildGateway(cfg, logger)

	intake := payments.NewIntakeService(
		gateway,
		store,
		bootstrap.LoadCoupons(cfg, logger),
		payments.IntakeConfig{
			NotificationURL: cfg.MercadoNotificationURL,
			SuccessURL:      cfg.MercadoSuccessURL,
		},
		bookingMetrics,
		logger.Component("intake"),
	)

	confirmations := payments.NewConfirmationService(payments.ConfirmationConfig{
		Gateway:       gateway,
		Store:         store,
		Calendar:      bootstrap.BuildCalendar(ctx, cfg, logger),
		Messenger:     bootstrap.BuildMessenger(cfg, logger),
		OwnerEmail:    bootstrap.BuildOwnerNotifier(cfg, logger),
		OwnerWhatsApp: cfg.OwnerWhatsApp,
		Location:      bootstrap.LoadLocation(cfg, logger),
		Metrics:       bookingMetrics,
		Logger:        logger.Component("webhook"),
	})

	handler := router.New(&router.Config{
		Logger:             logger,
		CheckoutHandler:    payments.NewCheckoutHandler(intake, logger),
		WebhookHandler:     payments.NewWebhookHandler(confirmations, bookingMetrics, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return handler, cleanup, nil
}

// setupMetrics uses a private registry so repeated wiring in tests does not
// collide on the global one.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}
