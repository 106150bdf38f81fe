package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/careconnect/careconnect-api/internal/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendPasswordReset(t *testing.T) {
	d := &fakeDialer{}
	svc := NewSMTPService(d, "no-reply@careconnect.local", "https://care.example", zap.NewNop())

	expires := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SendPasswordReset(context.Background(), "ann@example.com", "tok en", expires))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ann@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Reset your CareConnect password"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "https://care.example/reset-password?token=tok+en")
	assert.Contains(t, buf.String(), "2026-04-10 10:00 UTC")
}

func TestSendCustom(t *testing.T) {
	t.Run("dial failure", func(t *testing.T) {
		d := &fakeDialer{err: errors.New("connection refused")}
		svc := NewSMTPService(d, "from@example.com", "", zap.NewNop())
		err := svc.SendCustom(context.Background(), "a@example.com", "Hi", "body")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("cancelled context", func(t *testing.T) {
		d := &fakeDialer{}
		svc := NewSMTPService(d, "from@example.com", "", zap.NewNop())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, svc.SendCustom(ctx, "a@example.com", "Hi", "body"), context.Canceled)
		assert.Empty(t, d.sent)
	})
}

func TestDisabledServiceOnlyLogs(t *testing.T) {
	svc := NewService(config.EmailConfig{Enabled: false}, zap.NewNop())
	assert.NoError(t, svc.SendCustom(context.Background(), "a@example.com", "Hi", "body"))
	assert.NoError(t, svc.SendPasswordReset(context.Background(), "a@example.com", "t", time.Now()))
}
