// Package bus provides publish/subscribe plumbing shared by all services.
//
// Delivery is at-least-once and unordered across partitions. A handler
// error does not nack or redeliver: the message is treated as consumed
// regardless of handler outcome, and the error is routed to the
// subscription's failure hook.
package bus

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by Publish when the client has no broker
// connection.
var ErrNotConnected = errors.New("bus: not connected")

// Handler processes one delivered message. Messages within a single
// subscription are dispatched sequentially: a handler returns before the
// next message is delivered.
type Handler func(ctx context.Context, topic string, payload []byte) error

// FailureHook is invoked when a handler returns an error. The message has
// already been consumed at that point; the hook is the single seam for
// substituting a retry or dead-letter policy.
type FailureHook func(topic string, payload []byte, err error)

// Publisher appends serialized messages to a topic. No automatic retry is
// performed; the caller decides whether a failed publish is fatal.
type Publisher interface {
	Publish(ctx context.Context, topic string, v interface{}) error
}

// Subscriber joins a consumer group and dispatches messages from a set of
// topics to a handler. Subscribe blocks until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, group string, topics []string, handler Handler) error
}

// Bus combines both sides of the client.
type Bus interface {
	Publisher
	Subscriber
	Close() error
}
