package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/careconnect/careconnect-api/internal/config"
	"github.com/careconnect/careconnect-api/internal/email"
	"github.com/careconnect/careconnect-api/internal/handler/health"
	"github.com/careconnect/careconnect-api/internal/repository/postgres"
	"github.com/careconnect/careconnect-api/internal/service/audit"
	"github.com/careconnect/careconnect-api/internal/service/event"
	"github.com/careconnect/careconnect-api/internal/service/task"
	"github.com/careconnect/careconnect-api/internal/worker"
	"github.com/careconnect/careconnect-api/pkg/logger"
	"github.com/careconnect/careconnect-api/pkg/messaging/redis"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("worker_id", workerID()))

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, logger.New(cfg.Log))
	if err != nil {
		log.Fatal("failed to create redis broker", zap.Error(err))
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	tx := postgres.NewTransactor(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	userRepo := postgres.NewUserRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	taskSvc := task.NewService(postgres.NewTaskRepository(base), userRepo, tx, event.NewService(outboxRepo))
	auditSvc := audit.NewService(postgres.NewAuditRepository(base))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("careconnect_worker", reg)

	processor, err := worker.NewOutboxProcessor(outboxRepo, tx, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
		Channel:       cfg.Redis.Channel,
	}, log, m)
	if err != nil {
		log.Fatal("invalid outbox configuration", zap.Error(err))
	}

	notifier := worker.NewNotifier(userRepo, email.NewService(cfg.Email, log), log, m)

	auditRetention := 0
	if cfg.Audit.Enabled {
		auditRetention = cfg.Audit.RetentionDays
	}
	scheduler := worker.NewScheduler(taskSvc, auditSvc, tokenRepo, outboxRepo, worker.SchedulerConfig{
		OverdueSchedule:     cfg.Worker.OverdueSchedule,
		RetentionSchedule:   cfg.Worker.RetentionSchedule,
		OutboxRetentionDays: cfg.Outbox.RetentionDays,
		AuditRetentionDays:  auditRetention,
	}, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	srv := healthServer(cfg.Worker.Port, health.NewHandler(reg, map[string]health.Pinger{
		"database": db,
		"redis":    health.PingFunc(broker.Ping),
	}))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", zap.Error(err))
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx, broker, cfg.Redis.Channel); err != nil {
			log.Error("notification consumer stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	scheduler.Stop()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server forced to shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

func healthServer(port int, h *health.Handler) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.RegisterRoutes(engine)
	engine.GET("/metrics", h.Metrics())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
