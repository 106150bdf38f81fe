package messaging

import (
	"context"
)

// HandlerFunc processes one decoded message.
type HandlerFunc func(ctx context.Context, msg *Message) error

// Consume subscribes to channel and feeds decoded messages to handle until ctx is done.
// Handler and decode failures go to onError and do not stop consumption.
func Consume(ctx context.Context, broker Broker, channel string, handle HandlerFunc, onError func(raw []byte, err error)) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for raw := range msgs {
		msg, err := Decode(raw)
		if err != nil {
			if onError != nil {
				onError(raw, err)
			}
			continue
		}
		if err := handle(ctx, msg); err != nil && onError != nil {
			onError(raw, err)
		}
	}
	return ctx.Err()
}
