package match

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// StaticService serves a fixed candidate list and echoes the searched
// fields. It stands in for the live matching service in development and
// tests.
type StaticService struct {
	Candidates []Candidate
}

func (s *StaticService) LikelyMatches(_ context.Context, query Query) (string, error) {
	result := Result{
		AccountID: query.AccountID,
		SearchedFields: SearchedFields{
			Name:       query.Name,
			PostalCode: query.PostalCode,
			Phone:      query.Phone,
		},
		Candidates: s.Candidates,
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode match result")
	}

	return string(payload), nil
}

// SampleCandidates returns a plausible ranked candidate list for local runs.
func SampleCandidates() []Candidate {
	return []Candidate{
		{
			InternalID: "12345",
			EntityID:   "Acme Corp",
			Confidence: 0.92,
			MatchReasons: []MatchReason{
				{Field: "name", Score: 0.94, Detail: "fuzzy name match"},
				{Field: "postalCode", Score: 1.0, Detail: "exact match"},
			},
			Address: &Address{
				Line1:      "123 Main Street",
				City:       "Boston",
				State:      "MA",
				PostalCode: "02110",
				Country:    "US",
			},
			Phone: "999-999-9999",
		},
		{
			InternalID: "98765",
			EntityID:   "ACME Corporation - East",
			Confidence: 0.81,
			MatchReasons: []MatchReason{
				{Field: "name", Score: 0.84},
				{Field: "postalCode", Score: 1.0},
			},
			Address: &Address{
				Line1:      "100 Industrial Road",
				City:       "Boston",
				State:      "MA",
				PostalCode: "02110",
				Country:    "US",
			},
			Phone: "888-888-8888",
		},
	}
}
