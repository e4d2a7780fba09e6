package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castlebay/reconcile-go/cdc"
)

func str(s string) *string { return &s }

func accountEvent(changeType cdc.ChangeType, changedFields []string, externalID *string) (*cdc.ChangeHeader, *cdc.AccountPayload) {
	payload := &cdc.AccountPayload{
		ChangeEventHeader: cdc.ChangeHeader{
			EntityName:    "Account",
			RecordIDs:     []string{"acc-1"},
			ChangeType:    changeType,
			ChangedFields: changedFields,
		},
		ExternalCustomerID: externalID,
	}
	return &payload.ChangeEventHeader, payload
}

func TestAccountTriggerActsWhenFlagChangedAndIdentityBlank(t *testing.T) {
	header, payload := accountEvent(cdc.ChangeUpdate, []string{cdc.FieldRequiresMapping}, nil)

	decision := EvaluateAccountTrigger(header, payload)

	assert.True(t, decision.Act)
	assert.True(t, decision.NeedsFetch)
}

func TestAccountTriggerIgnoresAccountsWithAnIdentity(t *testing.T) {
	header, payload := accountEvent(cdc.ChangeUpdate, []string{cdc.FieldRequiresMapping}, str("NS-42"))

	decision := EvaluateAccountTrigger(header, payload)

	assert.False(t, decision.Act)
}

func TestAccountTriggerTreatsBlankIdentityAsMissing(t *testing.T) {
	header, payload := accountEvent(cdc.ChangeUpdate, []string{cdc.FieldRequiresMapping}, str("  "))

	decision := EvaluateAccountTrigger(header, payload)

	assert.True(t, decision.Act)
}

func TestAccountTriggerIgnoresUnrelatedChanges(t *testing.T) {
	header, payload := accountEvent(cdc.ChangeUpdate, []string{"Name"}, nil)

	decision := EvaluateAccountTrigger(header, payload)

	assert.False(t, decision.Act)
}

func TestAccountTriggerTrustsCreatePayloads(t *testing.T) {
	header, payload := accountEvent(cdc.ChangeCreate, []string{cdc.FieldRequiresMapping}, nil)

	decision := EvaluateAccountTrigger(header, payload)

	assert.True(t, decision.Act)
	assert.False(t, decision.NeedsFetch)
}

func TestAccountTriggerFiresOnCreateWithEmptyChangeSet(t *testing.T) {
	// A CREATE can legitimately arrive with an empty changed-field set since
	// everything on a new record is new.
	header, payload := accountEvent(cdc.ChangeCreate, []string{}, nil)

	decision := EvaluateAccountTrigger(header, payload)

	assert.True(t, decision.Act)
	assert.False(t, decision.NeedsFetch)
}

func orderEvent(changeType cdc.ChangeType, changedFields []string, status *string) (*cdc.ChangeHeader, *cdc.OrderPayload) {
	payload := &cdc.OrderPayload{
		ChangeEventHeader: cdc.ChangeHeader{
			EntityName:    "Order",
			RecordIDs:     []string{"ord-1"},
			ChangeType:    changeType,
			ChangedFields: changedFields,
		},
		Status: status,
	}
	return &payload.ChangeEventHeader, payload
}

func TestOrderTriggerActsOnCreateActivated(t *testing.T) {
	header, payload := orderEvent(cdc.ChangeCreate, []string{}, str(cdc.OrderStatusActivated))

	decision := EvaluateOrderTrigger(header, payload)

	assert.True(t, decision.Act)
	assert.True(t, decision.NeedsFetch)
}

func TestOrderTriggerActsOnStatusChangeToActivated(t *testing.T) {
	header, payload := orderEvent(cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, str(cdc.OrderStatusActivated))

	decision := EvaluateOrderTrigger(header, payload)

	assert.True(t, decision.Act)
	assert.True(t, decision.NeedsFetch)
}

func TestOrderTriggerIgnoresDraftOrders(t *testing.T) {
	header, payload := orderEvent(cdc.ChangeCreate, []string{}, str("Draft"))

	decision := EvaluateOrderTrigger(header, payload)

	assert.False(t, decision.Act)
}

func TestOrderTriggerIgnoresUnrelatedUpdates(t *testing.T) {
	header, payload := orderEvent(cdc.ChangeUpdate, []string{"TotalAmount"}, str(cdc.OrderStatusActivated))

	decision := EvaluateOrderTrigger(header, payload)

	assert.False(t, decision.Act)
}

func TestOrderTriggerIgnoresMissingStatus(t *testing.T) {
	header, payload := orderEvent(cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, nil)

	decision := EvaluateOrderTrigger(header, payload)

	assert.False(t, decision.Act)
}
