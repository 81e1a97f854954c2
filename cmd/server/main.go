// Package main is the entry point for the tao-yield-api, a service
// that periodically samples on-chain stake, derives per-subnet yield
// and APY figures for every validator, and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/api"
	"github.com/yourorg/tao-yield-api/internal/chain"
	"github.com/yourorg/tao-yield-api/internal/circuitbreaker"
	"github.com/yourorg/tao-yield-api/internal/config"
	"github.com/yourorg/tao-yield-api/internal/metadata"
	"github.com/yourorg/tao-yield-api/internal/otel"
	"github.com/yourorg/tao-yield-api/internal/store"
	"github.com/yourorg/tao-yield-api/internal/sweep"
)

func main() {
	setupLogging()
	cfg := config.Load()

	shutdownTracer := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	st := openStore(cfg)
	defer st.Close()

	client := chain.NewRPCClient(cfg.NodeRPCURL, cfg.ChainTimeout)
	breaker := circuitbreaker.New(cfg.BreakerFailureThreshold).
		WithResetDelay(cfg.BreakerResetDelay).
		WithTripCallback(func(reason string) {
			logrus.Warnf("Chain queries suspended: %s", reason)
		})

	runner := sweep.NewRunner(client, st, breaker, cfg.BlockInterval, cfg.SweepWorkers)
	syncer := metadata.NewSyncer(client, st)

	scheduler := startScheduler(cfg, runner, syncer)
	defer scheduler.Stop()

	server := api.NewServer(api.Options{
		Port:           cfg.Port,
		AdminKey:       cfg.AdminKey,
		CacheTTL:       cfg.CacheTTL,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, st, breaker)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server shutdown failed: %v", err)
	}
	logrus.Info("Server stopped")
}

// setupLogging configures the logging for the application
func setupLogging() {
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))

	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch logLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.Info("Logging configured")
}

// openStore connects to Redis when configured, otherwise falls back to
// the in-memory store. The fallback loses all data on restart and is
// meant for local development.
func openStore(cfg config.Config) store.Store {
	if cfg.RedisURL == "" {
		logrus.Warn("REDIS_URL not set; using in-memory store (data is not persisted)")
		return store.NewMemoryStore()
	}

	st, err := store.NewRedisStore(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	logrus.Info("Connected to Redis")
	return st
}

// startScheduler runs both background jobs once at startup and then on
// their configured cadence. Jobs recover from panics; an overlapping
// run is tolerated because record upserts are idempotent per field.
func startScheduler(cfg config.Config, runner *sweep.Runner, syncer *metadata.Syncer) *cron.Cron {
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	runSweep := func() {
		if err := runner.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Yield sweep failed")
		}
	}
	runSync := func() {
		if err := syncer.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Metadata sync failed")
		}
	}

	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.SweepInterval), runSweep); err != nil {
		logrus.Fatalf("Failed to schedule yield sweep: %v", err)
	}
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.MetadataSyncInterval), runSync); err != nil {
		logrus.Fatalf("Failed to schedule metadata sync: %v", err)
	}

	scheduler.Start()
	go runSync()
	go runSweep()

	logrus.WithFields(logrus.Fields{
		"sweep_interval":    cfg.SweepInterval,
		"metadata_interval": cfg.MetadataSyncInterval,
	}).Info("Background jobs scheduled")
	return scheduler
}
