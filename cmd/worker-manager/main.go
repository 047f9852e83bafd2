// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"underwriting-workers/internal/common/aws"
	"underwriting-workers/internal/common/camunda"
	"underwriting-workers/internal/common/config"
	"underwriting-workers/internal/common/database"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/observability"
	"underwriting-workers/internal/underwriting/intake"
	"underwriting-workers/pkg/registry"

	aa "underwriting-workers/internal/workers/underwriting/advance-application"
	co "underwriting-workers/internal/workers/underwriting/compute-offer"
	el "underwriting-workers/internal/workers/underwriting/export-lead"
	vf "underwriting-workers/internal/workers/underwriting/validate-field"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting underwriting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("broker", cfg.Camunda.BrokerAddress),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Policy profiles ---
	profiles, err := intake.NewRegistry(cfg.Policies)
	if err != nil {
		zapLog.Fatal("invalid policy profile", zap.Error(err))
	}
	zapLog.Info("Policy profiles loaded", zap.Strings("profiles", profiles.Profiles()))

	// --- Init Zeebe Client (retries internally) ---
	zeebe, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		return err
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Leads.AutoMigrate {
		if err := pg.EnsureLeadSchema(ctx, cfg.Leads.Table); err != nil {
			zapLog.Fatal("lead schema setup failed", zap.Error(err))
		}
	}

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		return err
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SNS (only when notifications are on) ---
	var publisher aws.Publisher
	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		publisher = snsClient
		zapLog.Info("SNS publisher ready", zap.String("region", cfg.Integrations.AWS.Region))
	}

	// --- Register Workers ---
	handlers := map[string]camunda.JobHandler{
		aa.TaskType: aa.NewHandler(
			aa.LoadConfig(config.GetWorkerConfig(cfg, aa.TaskType)), profiles, obs, log),
		vf.TaskType: vf.NewHandler(
			vf.LoadConfig(config.GetWorkerConfig(cfg, vf.TaskType)), profiles, log),
		co.TaskType: co.NewHandler(
			co.LoadConfig(config.GetWorkerConfig(cfg, co.TaskType)), profiles, log),
		el.TaskType: el.NewHandler(
			el.LoadConfig(cfg),
			database.NewLeadRepository(pg.GetDB(), cfg.Leads.Table),
			rdb,
			publisher,
			log),
	}

	taskTypes := make([]string, 0, len(handlers))
	for taskType := range handlers {
		taskTypes = append(taskTypes, taskType)
	}
	sort.Strings(taskTypes)

	activities, err := registry.LoadRegistry(cfg.Server.ActivityRegistry)
	if err != nil {
		zapLog.Warn("activity registry unavailable", zap.Error(err))
		activities = &registry.ActivityRegistry{}
	} else if err := activities.Check(taskTypes); err != nil {
		zapLog.Warn("activity registry out of date", zap.Error(err))
	}

	var workers []*camunda.CamundaWorker
	for _, taskType := range taskTypes {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		w := camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      taskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handlers[taskType], obs, log)
		w.Start()
		workers = append(workers, w)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newRouter(routerDeps{
			checks: map[string]healthChecker{
				"zeebe":    zeebe.HealthCheck,
				"postgres": pg.Ping,
				"redis":    rdb.Ping,
			},
			profiles:   profiles,
			activities: activities,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
