package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/castlebay/reconcile-go/cdc"
	"github.com/castlebay/reconcile-go/transport"
)

// Topics this pipeline consumes.
const (
	TopicAccountChanges = "/changes/account"
	TopicOrderChanges   = "/changes/order"
)

// Dispatcher routes raw subscription callbacks to the per-entity decode,
// trigger and workflow pipeline. Every fault below an authentication failure
// is contained to the event that caused it.
type Dispatcher struct {
	log        *zerolog.Logger
	accounts   *AccountWorkflow
	orders     *OrderWorkflow
	escalation *Escalation
	sequencer  *Sequencer
}

func NewDispatcher(
	accounts *AccountWorkflow,
	orders *OrderWorkflow,
	escalation *Escalation,
	log *zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		log:        log,
		accounts:   accounts,
		orders:     orders,
		escalation: escalation,
		sequencer:  NewSequencer(),
	}
}

// Callback returns the transport callback bound to ctx. Workflows triggered
// by delivered events run under ctx; cancelling it does not interrupt
// in-flight events, which either complete or are abandoned at Drain.
func (d *Dispatcher) Callback(ctx context.Context) transport.Callback {
	return func(subscription transport.Subscription, kind transport.CallbackKind, payload any) {
		d.handle(ctx, subscription, kind, payload)
	}
}

func (d *Dispatcher) handle(ctx context.Context, subscription transport.Subscription, kind transport.CallbackKind, payload any) {
	switch kind {
	case transport.KindEvent:
		d.handleEvent(ctx, subscription, payload)
	case transport.KindLastEvent:
		// Flow-control renewal is the transport client's concern.
		d.log.Info().
			Str("topic", subscription.TopicName).
			Int("requestedEventCount", subscription.RequestedEventCount).
			Msg("reached last requested event on channel")
	case transport.KindEnd:
		d.log.Info().Msg("transport closed gracefully")
	case transport.KindError:
		d.escalation.Observe(asError(payload))
	default:
		d.log.Error().Str("kind", string(kind)).Msg("unknown callback kind")
	}
}

func (d *Dispatcher) handleEvent(ctx context.Context, subscription transport.Subscription, payload any) {
	raw, ok := payload.([]byte)
	if !ok {
		d.log.Error().Str("topic", subscription.TopicName).Msg("event payload is not raw bytes, dropping")
		return
	}

	switch subscription.TopicName {
	case TopicAccountChanges:
		event, err := cdc.DecodeAccount(raw)
		if err != nil {
			d.log.Error().Err(err).Msg("failed to decode account change event")
			return
		}
		d.logReceived(subscription, event.Payload.ChangeEventHeader.EntityName, event.ReplayID)
		d.sequencer.Submit(event.Payload.ChangeEventHeader.RecordID(), func() {
			if err := d.accounts.Process(ctx, event); err != nil {
				d.log.Error().Err(err).Int64("replayId", event.ReplayID).Msg("account reconciliation abandoned")
			}
		})
	case TopicOrderChanges:
		event, err := cdc.DecodeOrder(raw)
		if err != nil {
			d.log.Error().Err(err).Msg("failed to decode order change event")
			return
		}
		d.logReceived(subscription, event.Payload.ChangeEventHeader.EntityName, event.ReplayID)
		d.sequencer.Submit(event.Payload.ChangeEventHeader.RecordID(), func() {
			if err := d.orders.Process(ctx, event); err != nil {
				d.log.Error().Err(err).Int64("replayId", event.ReplayID).Msg("order reconciliation abandoned")
			}
		})
	default:
		d.log.Error().Str("topic", subscription.TopicName).Msg("unknown subscription topic")
	}
}

func (d *Dispatcher) logReceived(subscription transport.Subscription, entityName string, replayID int64) {
	d.log.Info().
		Str("topic", subscription.TopicName).
		Str("entityName", entityName).
		Int64("replayId", replayID).
		Int("receivedEventCount", subscription.ReceivedEventCount).
		Int("requestedEventCount", subscription.RequestedEventCount).
		Msg("received event")
}

// Drain stops accepting events and waits up to timeout for in-flight
// workflows. It reports whether everything finished.
func (d *Dispatcher) Drain(timeout time.Duration) bool {
	return d.sequencer.Drain(timeout)
}

func asError(payload any) error {
	switch v := payload.(type) {
	case error:
		return v
	case string:
		return errors.New(v)
	default:
		return errors.Errorf("subscription error: %v", v)
	}
}
