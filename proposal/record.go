package proposal

// Record is the wire shape the store uses when returning proposal records.
type Record struct {
	ID                 string     `json:"id,omitempty"`
	AccountID          string     `json:"accountId"`
	CorrelationID      *string    `json:"correlationId,omitempty"`
	Decision           *Decision  `json:"decision,omitempty"`
	Reason             *string    `json:"reason,omitempty"`
	ResolvedAt         *Timestamp `json:"resolvedAt,omitempty"`
	SelectedExternalID *string    `json:"selectedExternalId,omitempty"`
	Status             Status     `json:"status,omitempty"`
	SuggestedAt        *Timestamp `json:"suggestedAt,omitempty"`
	SuggestedMatches   *string    `json:"suggestedMatchesJson,omitempty"`
}

// FromRecord builds a proposal from a store record.
func FromRecord(record *Record) (*Proposal, error) {
	return FromStoredFields(StoredFields{
		AccountID:          record.AccountID,
		CorrelationID:      record.CorrelationID,
		Decision:           record.Decision,
		Reason:             record.Reason,
		ResolvedAt:         record.ResolvedAt,
		SelectedExternalID: record.SelectedExternalID,
		Status:             record.Status,
		SuggestedAt:        record.SuggestedAt,
		SuggestedMatches:   record.SuggestedMatches,
	})
}

// ToRecord maps a proposal back to the store's wire shape. The record id is
// assigned by the store and is not carried on the proposal itself.
func (p *Proposal) ToRecord() *Record {
	return &Record{
		AccountID:          p.AccountID,
		CorrelationID:      p.CorrelationID,
		Decision:           p.Decision,
		Reason:             p.Reason,
		ResolvedAt:         p.ResolvedAt,
		SelectedExternalID: p.SelectedExternalID,
		Status:             p.Status,
		SuggestedAt:        p.SuggestedAt,
		SuggestedMatches:   p.SuggestedMatches,
	}
}
