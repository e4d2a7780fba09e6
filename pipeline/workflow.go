package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/castlebay/reconcile-go/cdc"
	"github.com/castlebay/reconcile-go/match"
	"github.com/castlebay/reconcile-go/proposal"
)

const tracerName = "reconcile-pipeline"

// EntityStore is the slice of the record store the workflows depend on.
type EntityStore interface {
	GetAccount(ctx context.Context, id string) (*cdc.Account, error)
	GetOrder(ctx context.Context, id string) (*cdc.Order, error)
	SetAccountRequiresMapping(ctx context.Context, accountID string, required bool) error
	CreateProposal(ctx context.Context, p *proposal.Proposal) (string, error)
	OpenProposal(ctx context.Context, accountID string) (*proposal.Record, error)
}

// ErrMissingRecordID marks a change header that carries no record ids. The
// feed guarantees one for the consumed topics, so this is a data-integrity
// fault.
var ErrMissingRecordID = errors.New("record id is missing from the change event header")

// AccountWorkflow reconciles flagged Accounts: it gathers identifying
// attributes, asks the match service for candidates and persists a proposal
// for human review.
type AccountWorkflow struct {
	store   EntityStore
	matches match.Service
	log     *zerolog.Logger
}

func NewAccountWorkflow(store EntityStore, matches match.Service, log *zerolog.Logger) *AccountWorkflow {
	return &AccountWorkflow{store: store, matches: matches, log: log}
}

// Process runs the account reconciliation for one decoded change event. A
// returned error means this event was abandoned; it is never fatal to the
// pipeline.
func (w *AccountWorkflow) Process(ctx context.Context, event *cdc.AccountChangeEvent) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "account reconciliation")
	defer span.End()

	header := &event.Payload.ChangeEventHeader

	accountID := header.RecordID()
	if accountID == "" {
		return ErrMissingRecordID
	}

	w.log.Info().
		Str("accountId", accountID).
		Strs("changedFields", header.ChangedFields).
		Msg("account change event")

	decision := EvaluateAccountTrigger(header, &event.Payload)
	if !decision.Act {
		return nil
	}

	open, err := w.store.OpenProposal(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to check for an open proposal")
	}
	if open != nil {
		w.log.Info().
			Str("accountId", accountID).
			Str("status", string(open.Status)).
			Msg("account already has an open match proposal, skipping")
		return nil
	}

	account := cdc.AccountFromChangeEvent(event)
	if decision.NeedsFetch {
		w.log.Debug().Str("accountId", accountID).Msg("update payload is partial, fetching full account")
		account, err = w.store.GetAccount(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to fetch account snapshot")
		}
	}

	query := match.Query{
		AccountID:  accountID,
		Name:       cdc.Text(account.Name),
		PostalCode: billingPostalCode(account),
		Phone:      cdc.Text(account.Phone),
	}

	w.log.Debug().
		Str("accountId", accountID).
		Str("accountName", query.Name).
		Str("postalCode", query.PostalCode).
		Str("phone", query.Phone).
		Msg("account details")

	matchesJSON, err := w.matches.LikelyMatches(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to retrieve likely matches")
	}

	p, err := proposal.FromMatchResult(accountID, matchesJSON)
	if err != nil {
		return err
	}

	recordID, err := w.store.CreateProposal(ctx, p)
	if err != nil {
		return errors.Wrap(err, "failed to persist match proposal")
	}

	w.log.Info().
		Str("accountId", accountID).
		Str("proposalId", recordID).
		Msg("match proposal created")

	return nil
}

func billingPostalCode(account *cdc.Account) string {
	if account.BillingAddress == nil {
		return ""
	}
	return cdc.Text(account.BillingAddress.PostalCode)
}

// OrderWorkflow reacts to Order activation by flagging the parent Account as
// requiring an external-identity mapping.
type OrderWorkflow struct {
	store EntityStore
	log   *zerolog.Logger
}

func NewOrderWorkflow(store EntityStore, log *zerolog.Logger) *OrderWorkflow {
	return &OrderWorkflow{store: store, log: log}
}

func (w *OrderWorkflow) Process(ctx context.Context, event *cdc.OrderChangeEvent) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "order reconciliation")
	defer span.End()

	header := &event.Payload.ChangeEventHeader

	orderID := header.RecordID()
	if orderID == "" {
		return ErrMissingRecordID
	}

	w.log.Info().
		Str("orderId", orderID).
		Strs("changedFields", header.ChangedFields).
		Str("changeType", string(header.ChangeType)).
		Msg("order change event")

	decision := EvaluateOrderTrigger(header, &event.Payload)
	if !decision.Act {
		return nil
	}

	// Re-fetch by id so the {status, accountId} pair is consistent; the event
	// payload may be partial and the write below targets another entity.
	order, err := w.store.GetOrder(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "failed to fetch order snapshot")
	}

	if !order.Activated() || order.AccountID == nil {
		w.log.Debug().
			Str("orderId", orderID).
			Str("status", cdc.Text(order.Status)).
			Str("accountId", cdc.Text(order.AccountID)).
			Msg("order is no longer activated or has no account, treating event as stale")
		return nil
	}

	accountID := *order.AccountID
	w.log.Info().
		Str("orderId", orderID).
		Str("accountId", accountID).
		Msg("order is activated, flagging account for identity mapping")

	if err := w.store.SetAccountRequiresMapping(ctx, accountID, true); err != nil {
		return errors.Wrap(err, "failed to flag account for identity mapping")
	}

	w.log.Info().Str("accountId", accountID).Msg("account flagged for identity mapping")

	return nil
}
