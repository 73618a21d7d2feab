// Package eventbus defines the contract between the webhook processing
// service and the event transports it publishes payout activity to.
package eventbus

import "context"

// Event is anything published on a Bus. Type names the stream the event
// is dispatched on and the decoder used by remote consumers.
type Event interface {
	Type() string
}

// HandlerFunc consumes one event. A returned error is logged by the bus; on
// durable transports the event is moved to a dead letter stream.
type HandlerFunc func(ctx context.Context, e Event) error

// Bus publishes events and dispatches them to registered handlers.
type Bus interface {
	Emit(ctx context.Context, event Event) error
	Register(eventType string, handler HandlerFunc)
}

// Factory builds an empty event for decoding a payload of the given type.
type Factory func() Event
