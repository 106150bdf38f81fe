package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/internal/repository/mocks"
	"github.com/careconnect/careconnect-api/pkg/messaging"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

type fakeBroker struct {
	fail      map[uuid.UUID]error
	published []messaging.Message
	channel   string
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	msg := message.(messaging.Message)
	if err := b.fail[msg.ID]; err != nil {
		return err
	}
	b.channel = channel
	b.published = append(b.published, msg)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Ping(ctx context.Context) error { return nil }
func (b *fakeBroker) Close() error                   { return nil }

func newMetrics() *metrics.Metrics {
	return metrics.New("test", prometheus.NewRegistry())
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(&mocks.OutboxRepository{}, mocks.Transactor{}, &fakeBroker{},
		OutboxProcessorConfig{BatchSize: 0, PollInterval: time.Second, RetryAttempts: 3, RetryDelay: time.Second},
		zap.NewNop(), newMetrics())
	assert.Error(t, err)
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	ok := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventTaskOverdue, Payload: json.RawMessage(`{}`), CreatedAt: now.Add(-time.Minute)}
	retry := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventIncidentReported, Payload: json.RawMessage(`{}`), RetryCount: 1}
	dead := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventIncidentReported, Payload: json.RawMessage(`{}`), RetryCount: 2}

	repo := &mocks.OutboxRepository{}
	broker := &fakeBroker{fail: map[uuid.UUID]error{
		retry.ID: errors.New("redis unavailable"),
		dead.ID:  errors.New("redis unavailable"),
	}}
	m := newMetrics()

	p, err := NewOutboxProcessor(repo, mocks.Transactor{}, broker, OutboxProcessorConfig{
		BatchSize: 10, PollInterval: time.Second, RetryAttempts: 3, RetryDelay: time.Minute,
	}, zap.NewNop(), m)
	require.NoError(t, err)
	p.now = func() time.Time { return now }

	repo.On("LockPending", ctx, 10).Return([]*model.OutboxEvent{ok, retry, dead}, nil)
	repo.On("MarkProcessed", ctx, ok.ID, now).Return(nil).Once()
	// second attempt backs off twice the base delay
	repo.On("MarkRetry", ctx, retry.ID, 2, now.Add(2*time.Minute), "redis unavailable").Return(nil).Once()
	repo.On("MarkFailed", ctx, dead.ID, 3, "redis unavailable").Return(nil).Once()

	n, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertExpectations(t)

	require.Len(t, broker.published, 1)
	assert.Equal(t, messaging.DefaultChannel, broker.channel)
	assert.Equal(t, model.EventTaskOverdue, broker.published[0].Type)
	assert.Equal(t, ok.CreatedAt, broker.published[0].OccurredAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventIncidentReported)))
}

func TestProcessBatchLockError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.OutboxRepository{}
	repo.On("LockPending", ctx, 5).Return(nil, errors.New("connection reset"))

	p, err := NewOutboxProcessor(repo, mocks.Transactor{}, &fakeBroker{}, OutboxProcessorConfig{
		BatchSize: 5, PollInterval: time.Second, RetryAttempts: 1, RetryDelay: time.Second,
	}, zap.NewNop(), newMetrics())
	require.NoError(t, err)

	_, err = p.ProcessBatch(ctx)
	assert.ErrorContains(t, err, "connection reset")
}

type fakeMailer struct {
	resets []string
	sent   map[string][]string
	err    error
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, email string, token string, expiresAt time.Time) error {
	f.resets = append(f.resets, email+"|"+token)
	return f.err
}

func (f *fakeMailer) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if f.sent == nil {
		f.sent = map[string][]string{}
	}
	f.sent[to] = append(f.sent[to], subject)
	return f.err
}

func message(t *testing.T, eventType string, payload interface{}) *messaging.Message {
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &messaging.Message{ID: uuid.New(), Type: eventType, Payload: raw}
}

func TestNotifierHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("password reset", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewNotifier(&mocks.UserRepository{}, mailer, zap.NewNop(), newMetrics())

		err := n.Handle(ctx, message(t, model.EventPasswordResetRequested, model.PasswordResetPayload{Email: "a@b.c", Token: "tok"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"a@b.c|tok"}, mailer.resets)
	})

	t.Run("reassignment request goes to target", func(t *testing.T) {
		users := &mocks.UserRepository{}
		mailer := &fakeMailer{}
		m := newMetrics()
		n := NewNotifier(users, mailer, zap.NewNop(), m)
		target := uuid.New()
		users.On("GetByID", ctx, target).Return(&model.User{Email: "target@care.test", Status: model.UserStatusActive}, nil)

		err := n.Handle(ctx, message(t, model.EventTaskReassignmentRequested, model.TaskEventPayload{Title: "Rounds", ReassignTo: &target}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Task reassignment request"}, mailer.sent["target@care.test"])
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.EventTaskReassignmentRequested, "sent")))
	})

	t.Run("overdue skips inactive assignee", func(t *testing.T) {
		users := &mocks.UserRepository{}
		mailer := &fakeMailer{}
		n := NewNotifier(users, mailer, zap.NewNop(), newMetrics())
		assignee := uuid.New()
		users.On("GetByID", ctx, assignee).Return(&model.User{Email: "x@care.test", Status: model.UserStatusInactive}, nil)

		err := n.Handle(ctx, message(t, model.EventTaskOverdue, model.TaskEventPayload{Title: "Vitals", AssignedTo: assignee}))
		require.NoError(t, err)
		assert.Empty(t, mailer.sent)
	})

	t.Run("incident goes to active admins", func(t *testing.T) {
		users := &mocks.UserRepository{}
		mailer := &fakeMailer{}
		n := NewNotifier(users, mailer, zap.NewNop(), newMetrics())
		users.On("ListByRole", ctx, model.RoleAdmin).Return([]*model.User{
			{Email: "one@care.test", Status: model.UserStatusActive},
			{Email: "two@care.test", Status: model.UserStatusInactive},
		}, nil)

		err := n.Handle(ctx, message(t, model.EventIncidentReported, model.IncidentReportedPayload{FormName: "Fall", ReportID: uuid.New()}))
		require.NoError(t, err)
		assert.Len(t, mailer.sent, 1)
		assert.Equal(t, []string{"Incident reported: Fall"}, mailer.sent["one@care.test"])
	})

	t.Run("send failure is counted", func(t *testing.T) {
		m := newMetrics()
		n := NewNotifier(&mocks.UserRepository{}, &fakeMailer{err: errors.New("smtp down")}, zap.NewNop(), m)

		err := n.Handle(ctx, message(t, model.EventPasswordResetRequested, model.PasswordResetPayload{Email: "a@b.c"}))
		assert.ErrorContains(t, err, "smtp down")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(model.EventPasswordResetRequested, "failed")))
	})

	t.Run("unrelated events are ignored", func(t *testing.T) {
		mailer := &fakeMailer{}
		n := NewNotifier(&mocks.UserRepository{}, mailer, zap.NewNop(), newMetrics())
		assert.NoError(t, n.Handle(ctx, message(t, model.EventCarePlanActivated, model.CarePlanActivatedPayload{})))
		assert.Empty(t, mailer.sent)
	})
}

type fakeSweeper struct {
	batch int
	n     int
	err   error
}

func (f *fakeSweeper) SweepOverdue(ctx context.Context, batchSize int) (int, error) {
	f.batch = batchSize
	return f.n, f.err
}

type fakeAudit struct{ days int }

func (f *fakeAudit) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	f.days = retentionDays
	return 4, nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, f.err
}

func TestSchedulerRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 20, 3, 0, 0, 0, time.UTC)
	outbox := &mocks.OutboxRepository{}
	audit := &fakeAudit{}

	s := NewScheduler(&fakeSweeper{}, audit, fakeTokens{err: errors.New("timeout")}, outbox, SchedulerConfig{
		OutboxRetentionDays: 7,
		AuditRetentionDays:  365,
	}, zap.NewNop(), newMetrics())
	s.now = func() time.Time { return now }
	outbox.On("DeleteProcessedBefore", ctx, now.AddDate(0, 0, -7)).Return(int64(12), nil).Once()

	err := s.Retention(ctx)
	assert.ErrorContains(t, err, "tokens: timeout")
	assert.Equal(t, 365, audit.days)
	outbox.AssertExpectations(t)
}

func TestSchedulerRunRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	m := newMetrics()
	sweeper := &fakeSweeper{n: 3}
	s := NewScheduler(sweeper, &fakeAudit{}, fakeTokens{}, &mocks.OutboxRepository{}, SchedulerConfig{}, zap.NewNop(), m)

	s.run(ctx, "overdue_sweep", s.SweepOverdue)
	assert.Equal(t, defaultOverdueBatch, sweeper.batch)

	sweeper.err = errors.New("db down")
	s.run(ctx, "overdue_sweep", s.SweepOverdue)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("overdue_sweep", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("overdue_sweep", "failure")))
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeSweeper{}, &fakeAudit{}, fakeTokens{}, &mocks.OutboxRepository{},
		SchedulerConfig{OverdueSchedule: "every now and then"}, zap.NewNop(), newMetrics())
	assert.Error(t, s.Start(context.Background()))
	s.Stop()
}
