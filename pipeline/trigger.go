package pipeline

import (
	"github.com/castlebay/reconcile-go/cdc"
)

// Decision is the outcome of trigger evaluation: whether the event warrants
// reconciliation, and whether the authoritative snapshot must be fetched
// before acting.
type Decision struct {
	Act        bool
	NeedsFetch bool
}

// EvaluateAccountTrigger decides whether an Account change event warrants a
// match lookup. It acts when the mapping-required flag changed and the
// account has no external identity yet. An UPDATE payload carries only
// changed fields, so identifying attributes are not guaranteed present and a
// fetch is required; a CREATE payload is taken as the full initial record.
func EvaluateAccountTrigger(header *cdc.ChangeHeader, payload *cdc.AccountPayload) Decision {
	if !header.FieldChanged(cdc.FieldRequiresMapping) {
		return Decision{}
	}

	if !cdc.Blank(payload.ExternalCustomerID) {
		return Decision{}
	}

	return Decision{
		Act:        true,
		NeedsFetch: header.ChangeType == cdc.ChangeUpdate,
	}
}

// EvaluateOrderTrigger decides whether an Order change event warrants
// flagging the parent Account. Activation counts whether it arrived on a
// CREATE or as a status change on an UPDATE. The fetch is unconditional: the
// resulting write targets a different entity, so the decision must come from
// a consistent {status, accountId} pair rather than a partial payload.
func EvaluateOrderTrigger(header *cdc.ChangeHeader, payload *cdc.OrderPayload) Decision {
	activated := payload.Status != nil && *payload.Status == cdc.OrderStatusActivated

	createAndActivated := header.ChangeType == cdc.ChangeCreate && activated
	becameActivated := header.FieldChanged(cdc.FieldOrderStatus) && activated

	if !createAndActivated && !becameActivated {
		return Decision{}
	}

	return Decision{Act: true, NeedsFetch: true}
}
