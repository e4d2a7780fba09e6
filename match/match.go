// Package match talks to the external identity-matching service. The
// pipeline treats results as opaque payloads; the candidate types here exist
// for the review surface and for building canned results in tests.
package match

import "context"

// Query carries an account's identifying attributes. Absent source fields
// must be supplied as empty strings, never nulls, since they feed a
// free-text candidate search.
type Query struct {
	AccountID  string `json:"accountId"`
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Service returns ranked candidate identity matches for an account. The
// result is the service's serialized response, stored verbatim.
type Service interface {
	LikelyMatches(ctx context.Context, query Query) (string, error)
}

// Result is the decoded shape of a match service response: the candidates
// plus an echo of the searched fields.
type Result struct {
	AccountID      string         `json:"accountId"`
	SearchedFields SearchedFields `json:"searchedFields"`
	Candidates     []Candidate    `json:"candidates"`
}

type SearchedFields struct {
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Candidate is one ranked identity match.
type Candidate struct {
	InternalID   string        `json:"internalId"`
	EntityID     string        `json:"entityId"`
	IsInactive   bool          `json:"isInactive"`
	Confidence   float64       `json:"confidence"`
	MatchReasons []MatchReason `json:"matchReasons"`
	Address      *Address      `json:"address,omitempty"`
	Phone        string        `json:"phone,omitempty"`
}

// MatchReason explains one field's contribution to a candidate's confidence.
type MatchReason struct {
	Field  string  `json:"field"`
	Score  float64 `json:"score"`
	Detail string  `json:"detail,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}
