package transport

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ReplayClient delivers captured raw events from memory, honoring the
// flow-control quota and the callback protocol of a live feed client. It
// stands in for the live transport in local runs and tests; the live client
// is an external collaborator.
type ReplayClient struct {
	mu        sync.Mutex
	events    map[string][][]byte
	connected bool
	closed    bool
	delivered sync.WaitGroup
}

func NewReplayClient(events map[string][][]byte) *ReplayClient {
	return &ReplayClient{events: events}
}

func (c *ReplayClient) Connect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

// Subscribe replays the topic's captured events in order on a separate
// goroutine, then signals lastEvent once the quota is reached or the capture
// is exhausted.
func (c *ReplayClient) Subscribe(ctx context.Context, topic string, callback Callback, requestedEvents int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return errors.New("replay client is not connected")
	}

	captured := c.events[topic]
	if len(captured) > requestedEvents {
		captured = captured[:requestedEvents]
	}

	subscription := Subscription{
		TopicName:           topic,
		RequestedEventCount: requestedEvents,
	}

	c.delivered.Add(1)
	go func() {
		defer c.delivered.Done()

		for index, raw := range captured {
			if ctx.Err() != nil {
				return
			}
			subscription.ReceivedEventCount = index + 1
			callback(subscription, KindEvent, raw)
		}

		callback(subscription, KindLastEvent, nil)
	}()

	return nil
}

func (c *ReplayClient) ConnectivityState(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "SHUTDOWN", nil
	}
	if !c.connected {
		return "IDLE", nil
	}
	return "READY", nil
}

func (c *ReplayClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.delivered.Wait()
	return nil
}
