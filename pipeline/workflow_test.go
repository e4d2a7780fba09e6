package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/reconcile-go/cdc"
	"github.com/castlebay/reconcile-go/match"
	"github.com/castlebay/reconcile-go/proposal"
)

type flagCall struct {
	AccountID string
	Required  bool
}

type fakeStore struct {
	mu sync.Mutex

	accounts map[string]*cdc.Account
	orders   map[string]*cdc.Order
	open     map[string]*proposal.Record
	fetchErr error
	writeErr error

	accountFetches int
	orderFetches   int
	flags          []flagCall
	created        []*proposal.Proposal
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[string]*cdc.Account{},
		orders:   map[string]*cdc.Order{},
		open:     map[string]*proposal.Record{},
	}
}

func (s *fakeStore) GetAccount(_ context.Context, id string) (*cdc.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accountFetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, errors.Errorf("account %s not found", id)
	}
	return account, nil
}

func (s *fakeStore) GetOrder(_ context.Context, id string) (*cdc.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderFetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, errors.Errorf("order %s not found", id)
	}
	return order, nil
}

func (s *fakeStore) SetAccountRequiresMapping(_ context.Context, accountID string, required bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.flags = append(s.flags, flagCall{AccountID: accountID, Required: required})
	return nil
}

func (s *fakeStore) CreateProposal(_ context.Context, p *proposal.Proposal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return "", s.writeErr
	}
	s.created = append(s.created, p)
	return "prop-1", nil
}

func (s *fakeStore) OpenProposal(_ context.Context, accountID string) (*proposal.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open[accountID], nil
}

type fakeMatcher struct {
	mu      sync.Mutex
	queries []match.Query
	err     error
}

func (m *fakeMatcher) LikelyMatches(_ context.Context, query match.Query) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	m.queries = append(m.queries, query)
	payload, _ := json.Marshal(match.Result{AccountID: query.AccountID})
	return string(payload), nil
}

var nop = zerolog.Nop()

func accountUpdateEvent(accountID string) *cdc.AccountChangeEvent {
	return &cdc.AccountChangeEvent{
		ID:       "evt-1",
		ReplayID: 1,
		Payload: cdc.AccountPayload{
			ChangeEventHeader: cdc.ChangeHeader{
				EntityName:    "Account",
				RecordIDs:     []string{accountID},
				ChangeType:    cdc.ChangeUpdate,
				ChangedFields: []string{cdc.FieldRequiresMapping},
			},
		},
	}
}

func TestAccountWorkflowFetchesAndProposesOnUpdate(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc-1"] = &cdc.Account{
		Name:           str("Acme Corp"),
		Phone:          str("555-0100"),
		BillingAddress: &cdc.Address{PostalCode: str("02110")},
	}
	matcher := &fakeMatcher{}

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), accountUpdateEvent("acc-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, store.accountFetches)
	require.Len(t, matcher.queries, 1)
	assert.Equal(t, match.Query{
		AccountID:  "acc-1",
		Name:       "Acme Corp",
		PostalCode: "02110",
		Phone:      "555-0100",
	}, matcher.queries[0])

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, "acc-1", created.AccountID)
	assert.Equal(t, proposal.PendingReview, created.Status)
	assert.NotNil(t, created.SuggestedAt)
	assert.NotNil(t, created.SuggestedMatches)
}

func TestAccountWorkflowSkipsAccountsWithAnIdentity(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeMatcher{}

	event := accountUpdateEvent("acc-2")
	event.Payload.ExternalCustomerID = str("NS-42")

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 0, store.accountFetches)
	assert.Empty(t, matcher.queries)
	assert.Empty(t, store.created)
}

func TestAccountWorkflowTrustsCreatePayload(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeMatcher{}

	event := &cdc.AccountChangeEvent{
		Payload: cdc.AccountPayload{
			ChangeEventHeader: cdc.ChangeHeader{
				RecordIDs:     []string{"acc-3"},
				ChangeType:    cdc.ChangeCreate,
				ChangedFields: []string{cdc.FieldRequiresMapping},
			},
			Name:           str("New Co"),
			BillingAddress: &cdc.Address{PostalCode: str("10001")},
		},
	}

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 0, store.accountFetches)
	require.Len(t, matcher.queries, 1)
	assert.Equal(t, "New Co", matcher.queries[0].Name)
	assert.Equal(t, "10001", matcher.queries[0].PostalCode)
	assert.Equal(t, "", matcher.queries[0].Phone)
}

func TestAccountWorkflowSuppressesDuplicateProposals(t *testing.T) {
	store := newFakeStore()
	store.open["acc-1"] = &proposal.Record{AccountID: "acc-1", Status: proposal.PendingReview}
	store.accounts["acc-1"] = &cdc.Account{Name: str("Acme Corp")}
	matcher := &fakeMatcher{}

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), accountUpdateEvent("acc-1"))
	require.NoError(t, err)

	assert.Empty(t, matcher.queries)
	assert.Empty(t, store.created)
}

func TestAccountWorkflowAbandonsEventWithoutRecordID(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeMatcher{}

	event := accountUpdateEvent("acc-1")
	event.Payload.ChangeEventHeader.RecordIDs = []string{}

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), event)

	assert.ErrorIs(t, err, ErrMissingRecordID)
	assert.Empty(t, matcher.queries)
}

func TestAccountWorkflowAbandonsEventOnFetchFault(t *testing.T) {
	store := newFakeStore()
	store.fetchErr = errors.New("store unavailable")
	matcher := &fakeMatcher{}

	workflow := NewAccountWorkflow(store, matcher, &nop)
	err := workflow.Process(context.Background(), accountUpdateEvent("acc-1"))

	require.Error(t, err)
	assert.Empty(t, matcher.queries)
	assert.Empty(t, store.created)
}

func orderStatusEvent(orderID string, changeType cdc.ChangeType, changedFields []string, status string) *cdc.OrderChangeEvent {
	return &cdc.OrderChangeEvent{
		Payload: cdc.OrderPayload{
			ChangeEventHeader: cdc.ChangeHeader{
				EntityName:    "Order",
				RecordIDs:     []string{orderID},
				ChangeType:    changeType,
				ChangedFields: changedFields,
			},
			Status: str(status),
		},
	}
}

func TestOrderWorkflowFlagsAccountOnActivation(t *testing.T) {
	store := newFakeStore()
	store.orders["ord-1"] = &cdc.Order{
		Status:    str(cdc.OrderStatusActivated),
		AccountID: str("acc-1"),
	}

	workflow := NewOrderWorkflow(store, &nop)
	event := orderStatusEvent("ord-1", cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, cdc.OrderStatusActivated)

	err := workflow.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 1, store.orderFetches)
	require.Len(t, store.flags, 1)
	assert.Equal(t, flagCall{AccountID: "acc-1", Required: true}, store.flags[0])
}

func TestOrderWorkflowTreatsCreateAndUpdateAlike(t *testing.T) {
	for _, event := range []*cdc.OrderChangeEvent{
		orderStatusEvent("ord-1", cdc.ChangeCreate, []string{}, cdc.OrderStatusActivated),
		orderStatusEvent("ord-1", cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, cdc.OrderStatusActivated),
	} {
		store := newFakeStore()
		store.orders["ord-1"] = &cdc.Order{
			Status:    str(cdc.OrderStatusActivated),
			AccountID: str("acc-1"),
		}

		workflow := NewOrderWorkflow(store, &nop)
		require.NoError(t, workflow.Process(context.Background(), event))

		require.Len(t, store.flags, 1)
		assert.Equal(t, flagCall{AccountID: "acc-1", Required: true}, store.flags[0])
	}
}

func TestOrderWorkflowIgnoresStaleActivation(t *testing.T) {
	store := newFakeStore()
	store.orders["ord-1"] = &cdc.Order{
		Status:    str("Draft"),
		AccountID: str("acc-1"),
	}

	workflow := NewOrderWorkflow(store, &nop)
	event := orderStatusEvent("ord-1", cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, cdc.OrderStatusActivated)

	err := workflow.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 1, store.orderFetches)
	assert.Empty(t, store.flags)
}

func TestOrderWorkflowIgnoresOrdersWithoutAnAccount(t *testing.T) {
	store := newFakeStore()
	store.orders["ord-1"] = &cdc.Order{Status: str(cdc.OrderStatusActivated)}

	workflow := NewOrderWorkflow(store, &nop)
	event := orderStatusEvent("ord-1", cdc.ChangeCreate, []string{}, cdc.OrderStatusActivated)

	err := workflow.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Empty(t, store.flags)
}

func TestOrderWorkflowAlwaysRefetchesBeforeDeciding(t *testing.T) {
	store := newFakeStore()
	store.orders["ord-1"] = &cdc.Order{
		Status:    str(cdc.OrderStatusActivated),
		AccountID: str("acc-1"),
	}

	workflow := NewOrderWorkflow(store, &nop)
	event := orderStatusEvent("ord-1", cdc.ChangeUpdate, []string{cdc.FieldOrderStatus}, cdc.OrderStatusActivated)

	// Re-fetching with no intervening mutation yields the same decision.
	require.NoError(t, workflow.Process(context.Background(), event))
	require.NoError(t, workflow.Process(context.Background(), event))

	assert.Equal(t, 2, store.orderFetches)
	require.Len(t, store.flags, 2)
	assert.Equal(t, store.flags[0], store.flags[1])
}
