package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careconnect/careconnect-api/internal/email"
	"github.com/careconnect/careconnect-api/internal/model"
	"github.com/careconnect/careconnect-api/pkg/messaging"
	"github.com/careconnect/careconnect-api/pkg/metrics"
)

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListByRole(ctx context.Context, role string) ([]*model.User, error)
}

// Notifier turns domain events into staff emails.
type Notifier struct {
	users   UserDirectory
	mailer  email.Service
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewNotifier(users UserDirectory, mailer email.Service, logger *zap.Logger, metrics *metrics.Metrics) *Notifier {
	return &Notifier{
		users:   users,
		mailer:  mailer,
		logger:  logger.Named("notifier"),
		metrics: metrics,
	}
}

// Run consumes channel until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, broker messaging.Broker, channel string) error {
	n.logger.Info("starting notification consumer", zap.String("channel", channel))
	err := messaging.Consume(ctx, broker, channel, n.Handle, func(raw []byte, err error) {
		n.logger.Error("failed to handle message", zap.ByteString("message", raw), zap.Error(err))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle dispatches a single message. Event types without a notification are ignored.
func (n *Notifier) Handle(ctx context.Context, msg *messaging.Message) error {
	var err error
	switch msg.Type {
	case model.EventPasswordResetRequested:
		err = n.passwordReset(ctx, msg.Payload)
	case model.EventTaskReassignmentRequested:
		err = n.reassignmentRequested(ctx, msg.Payload)
	case model.EventTaskReassignmentRejected:
		err = n.reassignmentRejected(ctx, msg.Payload)
	case model.EventTaskOverdue:
		err = n.taskOverdue(ctx, msg.Payload)
	case model.EventIncidentReported:
		err = n.incidentReported(ctx, msg.Payload)
	default:
		return nil
	}

	status := "sent"
	if err != nil {
		status = "failed"
	}
	n.metrics.Notifications.WithLabelValues(msg.Type, status).Inc()
	if err != nil {
		return fmt.Errorf("%s %s: %w", msg.Type, msg.ID, err)
	}
	n.logger.Debug("notification sent", zap.String("event_type", msg.Type), zap.String("event_id", msg.ID.String()))
	return nil
}

func (n *Notifier) passwordReset(ctx context.Context, raw json.RawMessage) error {
	var p model.PasswordResetPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return n.mailer.SendPasswordReset(ctx, p.Email, p.Token, p.ExpiresAt)
}

func (n *Notifier) reassignmentRequested(ctx context.Context, raw json.RawMessage) error {
	var p model.TaskEventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if p.ReassignTo == nil {
		return errors.New("reassignment request without target")
	}
	body := fmt.Sprintf("You have been asked to take over the task %q.", p.Title)
	if p.Reason != "" {
		body += "\n\nReason: " + p.Reason
	}
	body += "\n\nOpen CareConnect to accept or decline the request."
	return n.sendTo(ctx, *p.ReassignTo, "Task reassignment request", body)
}

func (n *Notifier) reassignmentRejected(ctx context.Context, raw json.RawMessage) error {
	var p model.TaskEventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	body := fmt.Sprintf("Your request to hand over the task %q was declined.", p.Title)
	if p.Reason != "" {
		body += "\n\nReason: " + p.Reason
	}
	return n.sendTo(ctx, p.AssignedTo, "Task reassignment declined", body)
}

func (n *Notifier) taskOverdue(ctx context.Context, raw json.RawMessage) error {
	var p model.TaskEventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	body := fmt.Sprintf("The task %q is overdue.", p.Title)
	if p.DueAt != nil {
		body = fmt.Sprintf("The task %q was due at %s.", p.Title, p.DueAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return n.sendTo(ctx, p.AssignedTo, "Task overdue", body)
}

func (n *Notifier) incidentReported(ctx context.Context, raw json.RawMessage) error {
	var p model.IncidentReportedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	admins, err := n.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}

	subject := "Incident reported: " + p.FormName
	body := fmt.Sprintf("A %s report was submitted for an incident on %s.\n\nReport ID: %s",
		p.FormName, p.IncidentDate.UTC().Format(model.DateLayout), p.ReportID)

	var errs []error
	for _, admin := range admins {
		if !admin.IsActive() {
			continue
		}
		if err := n.mailer.SendCustom(ctx, admin.Email, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", admin.Email, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) sendTo(ctx context.Context, userID uuid.UUID, subject, body string) error {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("recipient %s: %w", userID, err)
	}
	if !user.IsActive() {
		n.logger.Info("skipping notification for inactive user", zap.String("user_id", userID.String()))
		return nil
	}
	return n.mailer.SendCustom(ctx, user.Email, subject, body)
}
