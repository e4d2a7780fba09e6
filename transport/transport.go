// Package transport defines the boundary to the change-event feed. The
// concrete client owns the connection, flow control and reconnect policy;
// this package only names the contract the pipeline consumes.
package transport

import "context"

// CallbackKind classifies a subscription callback.
type CallbackKind string

const (
	// KindEvent delivers one change event.
	KindEvent CallbackKind = "event"
	// KindLastEvent signals the feed has delivered the requested quota and
	// will close the subscription.
	KindLastEvent CallbackKind = "lastEvent"
	// KindEnd signals graceful closure of the transport.
	KindEnd CallbackKind = "end"
	// KindError delivers a subscription-level error.
	KindError CallbackKind = "error"
)

// Subscription describes the subscription a callback belongs to.
type Subscription struct {
	TopicName           string
	RequestedEventCount int
	ReceivedEventCount  int
}

// Callback receives subscription callbacks. For KindEvent the payload is the
// raw event bytes; for KindError it is the transport error.
type Callback func(subscription Subscription, kind CallbackKind, payload any)

// Client is the subscription transport. Connect must complete before any
// Subscribe call.
type Client interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, topic string, callback Callback, requestedEvents int) error
	ConnectivityState(ctx context.Context) (string, error)
	Close() error
}
