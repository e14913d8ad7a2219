package messagequeue

import "context"

// Handler processes one message body. A nil error acknowledges the message;
// an error rejects it without requeueing.
type Handler func(ctx context.Context, body []byte) error

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume blocks, handling messages until ctx is done or the delivery
	// channel closes.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}
