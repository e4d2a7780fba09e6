package cdc

// ChangeType identifies the kind of mutation a change event describes.
type ChangeType string

const (
	ChangeCreate   ChangeType = "CREATE"
	ChangeUpdate   ChangeType = "UPDATE"
	ChangeDelete   ChangeType = "DELETE"
	ChangeUndelete ChangeType = "UNDELETE"
)

// ChangeHeader carries the feed's description of a change: what entity
// changed, how, and which fields were touched. The decoder guarantees the
// slices are never nil, so consumers can range over them without checks.
type ChangeHeader struct {
	EntityName      string     `json:"entityName"`
	RecordIDs       []string   `json:"recordIds"`
	ChangeType      ChangeType `json:"changeType"`
	ChangeOrigin    string     `json:"changeOrigin"`
	TransactionKey  string     `json:"transactionKey"`
	SequenceNumber  int64      `json:"sequenceNumber"`
	CommitTimestamp int64      `json:"commitTimestamp"`
	CommitNumber    string     `json:"commitNumber"`
	CommitUser      string     `json:"commitUser"`
	NulledFields    []string   `json:"nulledFields"`
	DiffFields      []string   `json:"diffFields"`
	ChangedFields   []string   `json:"changedFields"`
}

// RecordID returns the canonical record id for a single-record change, or ""
// when the header carries no record ids. For the topics this system consumes
// an empty result is a data-integrity fault, not a normal state.
func (h *ChangeHeader) RecordID() string {
	if len(h.RecordIDs) == 0 {
		return ""
	}
	return h.RecordIDs[0]
}

// FieldChanged reports whether the named field is part of this change. A
// CREATE that arrives with an empty changedFields set is treated as having
// changed every field, since everything on a new record is new.
func (h *ChangeHeader) FieldChanged(name string) bool {
	if h.ChangeType == ChangeCreate && len(h.ChangedFields) == 0 {
		return true
	}
	for _, field := range h.ChangedFields {
		if field == name {
			return true
		}
	}
	return false
}

func (h *ChangeHeader) normalize() {
	if h.RecordIDs == nil {
		h.RecordIDs = []string{}
	}
	if h.NulledFields == nil {
		h.NulledFields = []string{}
	}
	if h.DiffFields == nil {
		h.DiffFields = []string{}
	}
	if h.ChangedFields == nil {
		h.ChangedFields = []string{}
	}
}
