package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bellasalon/booking-platform/cmd/mainconfig"
	"github.com/bellasalon/booking-platform/internal/api/router"
	"github.com/bellasalon/booking-platform/internal/auth"
	"github.com/bellasalon/booking-platform/internal/booking"
	appconfig "github.com/bellasalon/booking-platform/internal/config"
	httpmiddleware "github.com/bellasalon/booking-platform/internal/http/middleware"
	"github.com/bellasalon/booking-platform/internal/observability/metrics"
	"github.com/bellasalon/booking-platform/internal/realtime"
	"github.com/bellasalon/booking-platform/internal/reports"
	"github.com/bellasalon/booking-platform/internal/salon"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
	)

	ctx := context.Background()
	backend, cleanup, err := mainconfig.BuildBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	bookingStore := booking.NewStore(backend)
	notifier := booking.NewNotifier(bookingStore, logger, bookingMetrics)
	manager := booking.NewManager(bookingStore, notifier, logger, bookingMetrics)

	provider := auth.NewLocal(backend, logger)
	if cfg.AdminEmail != "" {
		if _, err := provider.EnsureUser(ctx, cfg.AdminEmail, auth.RoleAdmin); err != nil {
			logger.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	}
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET is empty, admin routes are disabled")
	}
	mint := func(profile *auth.Profile, ttl time.Duration) (string, error) {
		return httpmiddleware.MintActorToken(cfg.AdminJWTSecret, profile, ttl)
	}

	salonStore := salon.NewStore(backend, logger)
	reporter := reports.NewReporter(bookingStore, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(manager, bookingStore, logger, bookingMetrics),
		AuthHandler:        auth.NewHandler(provider, mint, cfg.AdminJWTTTL, logger),
		SalonHandler:       salon.NewHandler(salonStore, logger),
		ReportsHandler:     reports.NewHandler(reporter, bookingStore, logger),
		RealtimeHandler:    realtime.NewHandler(notifier, cfg.AdminJWTSecret, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
}
