// Package worker runs the reconciliation pipeline against a live
// subscription transport: connect, subscribe to both change topics, poll
// connectivity, and perform the single controlled shutdown sequence.
package worker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/castlebay/reconcile-go/pipeline"
	"github.com/castlebay/reconcile-go/transport"
)

const (
	// DefaultRequestedEvents is the per-subscription flow-control quota.
	DefaultRequestedEvents = 100
	// DefaultPollInterval is how often connectivity is checked.
	DefaultPollInterval = 60 * time.Second
	// DefaultDrainTimeout bounds how long in-flight workflows may run after
	// shutdown begins. The worker exits when it elapses regardless of
	// completion.
	DefaultDrainTimeout = 10 * time.Second
)

type Option func(*Worker)

func RequestedEvents(count int) Option {
	return func(w *Worker) { w.requestedEvents = count }
}

func PollInterval(interval time.Duration) Option {
	return func(w *Worker) { w.pollInterval = interval }
}

func DrainTimeout(timeout time.Duration) Option {
	return func(w *Worker) { w.drainTimeout = timeout }
}

type Worker struct {
	client     transport.Client
	dispatcher *pipeline.Dispatcher
	escalation *pipeline.Escalation
	log        *zerolog.Logger

	requestedEvents int
	pollInterval    time.Duration
	drainTimeout    time.Duration
}

func New(
	client transport.Client,
	dispatcher *pipeline.Dispatcher,
	escalation *pipeline.Escalation,
	log *zerolog.Logger,
	options ...Option,
) *Worker {
	worker := &Worker{
		client:          client,
		dispatcher:      dispatcher,
		escalation:      escalation,
		log:             log,
		requestedEvents: DefaultRequestedEvents,
		pollInterval:    DefaultPollInterval,
		drainTimeout:    DefaultDrainTimeout,
	}

	for _, option := range options {
		option(worker)
	}

	return worker
}

// Run connects, subscribes and blocks until ctx is cancelled or an
// authentication failure escalates. It then stops accepting events, allows
// in-flight workflows the drain timeout, and returns. A failure during the
// shutdown sequence is returned so the caller can terminate immediately.
func (w *Worker) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.client.Connect(runCtx); err != nil {
		return errors.Wrap(err, "failed to connect to the change feed")
	}
	w.log.Info().Msg("connected to the change feed")

	callback := w.dispatcher.Callback(runCtx)
	for _, topic := range []string{pipeline.TopicOrderChanges, pipeline.TopicAccountChanges} {
		if err := w.client.Subscribe(runCtx, topic, callback, w.requestedEvents); err != nil {
			return errors.Wrapf(err, "failed to subscribe to %s", topic)
		}
		w.log.Info().Str("topic", topic).Int("requestedEvents", w.requestedEvents).Msg("subscribed")
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.checkConnectivity(runCtx)

	for {
		select {
		case <-ticker.C:
			w.checkConnectivity(runCtx)
		case <-w.escalation.Done():
			w.log.Info().Msg("shutdown escalated, stopping worker")
			return w.stop()
		case <-ctx.Done():
			w.log.Info().Msg("stopping worker")
			return w.stop()
		}
	}
}

// checkConnectivity polls the transport's liveness. Unhealthy state is
// logged only; reconnecting is the transport client's responsibility.
func (w *Worker) checkConnectivity(ctx context.Context) {
	state, err := w.client.ConnectivityState(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to read connectivity state")
		return
	}
	w.log.Debug().Str("state", state).Msg("connectivity state")
}

func (w *Worker) stop() error {
	if err := w.client.Close(); err != nil {
		return errors.Wrap(err, "failed to close the change feed connection")
	}

	if !w.dispatcher.Drain(w.drainTimeout) {
		w.log.Warn().Dur("timeout", w.drainTimeout).Msg("drain timeout elapsed with work in flight")
	}

	w.log.Info().Msg("worker stopped")
	return nil
}
