package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/careconnect/careconnect-api/pkg/metrics"
)

const (
	DefaultOverdueSchedule   = "@every 5m"
	DefaultRetentionSchedule = "0 3 * * *"
	defaultOverdueBatch      = 200
)

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, batchSize int) (int, error)
}

type AuditPruner interface {
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

type TokenPruner interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type OutboxPruner interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type SchedulerConfig struct {
	OverdueSchedule     string
	RetentionSchedule   string
	OverdueBatch        int
	OutboxRetentionDays int
	AuditRetentionDays  int
}

// Scheduler runs the periodic maintenance jobs on cron expressions.
type Scheduler struct {
	cron    *cron.Cron
	tasks   OverdueSweeper
	audit   AuditPruner
	tokens  TokenPruner
	outbox  OutboxPruner
	config  SchedulerConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewScheduler(
	tasks OverdueSweeper,
	audit AuditPruner,
	tokens TokenPruner,
	outbox OutboxPruner,
	config SchedulerConfig,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) *Scheduler {
	if config.OverdueSchedule == "" {
		config.OverdueSchedule = DefaultOverdueSchedule
	}
	if config.RetentionSchedule == "" {
		config.RetentionSchedule = DefaultRetentionSchedule
	}
	if config.OverdueBatch <= 0 {
		config.OverdueBatch = defaultOverdueBatch
	}

	logger = logger.Named("scheduler")
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		tasks:   tasks,
		audit:   audit,
		tokens:  tokens,
		outbox:  outbox,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.config.OverdueSchedule, func() {
		s.run(ctx, "overdue_sweep", s.SweepOverdue)
	}); err != nil {
		return fmt.Errorf("invalid overdue schedule %q: %w", s.config.OverdueSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.config.RetentionSchedule, func() {
		s.run(ctx, "retention", s.Retention)
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.config.RetentionSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("overdue_schedule", s.config.OverdueSchedule),
		zap.String("retention_schedule", s.config.RetentionSchedule))
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) SweepOverdue(ctx context.Context) error {
	n, err := s.tasks.SweepOverdue(ctx, s.config.OverdueBatch)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("flagged overdue tasks", zap.Int("count", n))
	}
	return nil
}

// Retention prunes audit logs, expired tokens and delivered outbox rows.
// Every step runs even if an earlier one fails.
func (s *Scheduler) Retention(ctx context.Context) error {
	var errs []error
	now := s.now()

	if s.config.AuditRetentionDays > 0 {
		n, err := s.audit.Cleanup(ctx, s.config.AuditRetentionDays)
		if err != nil {
			errs = append(errs, fmt.Errorf("audit logs: %w", err))
		} else {
			s.logger.Info("pruned audit logs", zap.Int64("deleted", n))
		}
	}

	if n, err := s.tokens.DeleteExpired(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("tokens: %w", err))
	} else {
		s.logger.Info("pruned expired tokens", zap.Int64("deleted", n))
	}

	if s.config.OutboxRetentionDays > 0 {
		before := now.AddDate(0, 0, -s.config.OutboxRetentionDays)
		n, err := s.outbox.DeleteProcessedBefore(ctx, before)
		if err != nil {
			errs = append(errs, fmt.Errorf("outbox: %w", err))
		} else {
			s.logger.Info("pruned processed outbox events", zap.Int64("deleted", n))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) run(ctx context.Context, job string, fn func(context.Context) error) {
	if ctx.Err() != nil {
		return
	}
	status := "success"
	if err := fn(ctx); err != nil {
		status = "failure"
		s.logger.Error("job failed", zap.String("job", job), zap.Error(err))
	}
	s.metrics.JobRuns.WithLabelValues(job, status).Inc()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
