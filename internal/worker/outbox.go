// Package worker runs the background side of the service: outbox relay,
// notification emails and scheduled maintenance jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository"
	"github.com/careconnect/careconnect-api/pkg/messaging"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	// RetryDelay is the first backoff; it doubles with every failed attempt.
	RetryDelay time.Duration
	Channel    string
}

// OutboxProcessor relays outbox rows to the broker.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	tx      repository.Transactor
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	tx repository.Transactor,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *zap.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if config.BatchSize <= 0 {
		return nil, errors.New("outbox batch size must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, errors.New("outbox poll interval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, errors.New("outbox retry attempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		return nil, errors.New("outbox retry delay must be greater than 0")
	}
	if config.Channel == "" {
		config.Channel = messaging.DefaultChannel
	}

	return &OutboxProcessor{
		repo:    repo,
		tx:      tx,
		broker:  broker,
		config:  config,
		logger:  logger.Named("outbox"),
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", zap.Error(err))
			}
		}
	}
}

// ProcessBatch locks up to BatchSize due events and publishes them. Rows stay
// locked until the batch is settled so concurrent workers skip them.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	published := 0
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := p.repo.LockPending(ctx, p.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to lock pending events: %w", err)
		}
		for _, event := range events {
			ok, err := p.processEvent(ctx, event)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	return published, err
}

// processEvent reports whether the event was published. The returned error
// is reserved for failures to record the outcome.
func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) (bool, error) {
	msg := messaging.Message{
		ID:         event.ID,
		Type:       event.EventType,
		Payload:    event.Payload,
		OccurredAt: event.CreatedAt,
	}

	pubErr := p.broker.Publish(ctx, p.config.Channel, msg)
	if pubErr == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.repo.MarkProcessed(ctx, event.ID, p.now()); err != nil {
			return false, fmt.Errorf("failed to mark event %s processed: %w", event.ID, err)
		}
		return true, nil
	}

	attempts := event.RetryCount + 1
	logger := p.logger.With(
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.EventType),
		zap.Int("attempt", attempts),
		zap.Error(pubErr))

	if attempts >= p.config.RetryAttempts {
		p.metrics.OutboxEventsFailed.Inc()
		logger.Error("giving up on outbox event")
		if err := p.repo.MarkFailed(ctx, event.ID, attempts, pubErr.Error()); err != nil {
			return false, fmt.Errorf("failed to mark event %s failed: %w", event.ID, err)
		}
		return false, nil
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := p.now().Add(p.backoff(attempts))
	logger.Warn("outbox publish failed, will retry", zap.Time("retry_at", retryAt))
	if err := p.repo.MarkRetry(ctx, event.ID, attempts, retryAt, pubErr.Error()); err != nil {
		return false, fmt.Errorf("failed to schedule retry for event %s: %w", event.ID, err)
	}
	return false, nil
}

func (p *OutboxProcessor) backoff(attempt int) time.Duration {
	d := p.config.RetryDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
