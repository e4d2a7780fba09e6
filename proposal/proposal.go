package proposal

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// Decision records which way a human resolved a proposal.
type Decision string

const (
	UseExisting Decision = "Use Existing"
	CreateNew   Decision = "Create New"
)

// Timestamp is a store-compatible datetime string, UTC at second precision.
type Timestamp string

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UTC().Truncate(time.Second).Format(time.RFC3339))
}

// Proposal links an Account to a ranked set of candidate external identities
// and tracks the human resolution workflow. A proposal is retained as an
// audit record once terminal; it is never deleted.
type Proposal struct {
	AccountID          string
	CorrelationID      *string
	Decision           *Decision
	Reason             *string
	ResolvedAt         *Timestamp
	SelectedExternalID *string
	Status             Status
	SuggestedAt        *Timestamp
	SuggestedMatches   *string
}

// The monotonic reader is not safe for concurrent use; proposals for
// distinct accounts are constructed in parallel, so reads are serialized.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func correlationID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// FromMatchResult constructs a new proposal from a match service result,
// ready for human review. The matches payload is stored verbatim; only the
// review surface interprets it.
func FromMatchResult(accountID string, matchesJSON string) (*Proposal, error) {
	if accountID == "" {
		return nil, errors.New("account id is required to create a match proposal")
	}

	id := correlationID()
	suggested := TimestampFromTime(time.Now())

	return &Proposal{
		AccountID:        accountID,
		CorrelationID:    &id,
		Status:           PendingReview,
		SuggestedAt:      &suggested,
		SuggestedMatches: &matchesJSON,
	}, nil
}

// StoredFields is the field set a proposal record carries in the store.
type StoredFields struct {
	AccountID          string
	CorrelationID      *string
	Decision           *Decision
	Reason             *string
	ResolvedAt         *Timestamp
	SelectedExternalID *string
	Status             Status
	SuggestedAt        *Timestamp
	SuggestedMatches   *string
}

// FromStoredFields reconstructs a proposal from already-normalized store
// data.
func FromStoredFields(fields StoredFields) (*Proposal, error) {
	if fields.AccountID == "" {
		return nil, errors.New("account id is required to create a match proposal")
	}

	return &Proposal{
		AccountID:          fields.AccountID,
		CorrelationID:      fields.CorrelationID,
		Decision:           fields.Decision,
		Reason:             fields.Reason,
		ResolvedAt:         fields.ResolvedAt,
		SelectedExternalID: fields.SelectedExternalID,
		Status:             fields.Status,
		SuggestedAt:        fields.SuggestedAt,
		SuggestedMatches:   fields.SuggestedMatches,
	}, nil
}
