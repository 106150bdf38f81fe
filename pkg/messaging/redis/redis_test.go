package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-api/pkg/messaging"
)

func newTestBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewRedisBroker(Config{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestPublishSubscribe(t *testing.T) {
	b, _ := newTestBroker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := b.Subscribe(ctx, messaging.DefaultChannel)
	require.NoError(t, err)

	sent := messaging.Message{
		ID:         uuid.New(),
		Type:       "TASK_OVERDUE",
		Payload:    json.RawMessage(`{"task_id":"abc"}`),
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, b.Publish(ctx, messaging.DefaultChannel, sent))

	select {
	case raw := <-msgs:
		got, err := messaging.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "TASK_OVERDUE", got.Type)
		assert.JSONEq(t, `{"task_id":"abc"}`, string(got.Payload))
	case <-ctx.Done():
		t.Fatal("message not received")
	}
}

func TestPublishFailsWhenServerDown(t *testing.T) {
	b, mr := newTestBroker(t)
	mr.Close()

	err := b.Publish(context.Background(), messaging.DefaultChannel, map[string]string{"a": "b"})
	assert.Error(t, err)
}

func TestInvalidURL(t *testing.T) {
	_, err := NewRedisBroker(Config{URL: "://nope"}, zerolog.Nop())
	assert.Error(t, err)
}
