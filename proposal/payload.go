package proposal

import (
	"github.com/castlebay/reconcile-go/cdc"
)

// Store-side names for the proposal object and its fields. Custom-marker
// names are namespaced on the way out; the account reference rides under the
// standard relationship field name.
const (
	ObjectName = "Customer_Match__c"

	fieldAccount            = "Account__c"
	fieldCorrelationID      = "Correlation_Id__c"
	fieldDecision           = "Decision__c"
	fieldReason             = "Reason__c"
	fieldResolvedAt         = "Resolved_At__c"
	fieldSelectedExternalID = "Selected_External_ID__c"
	fieldStatus             = "Status__c"
	fieldSuggestedAt        = "Suggested_At__c"
	fieldSuggestedMatches   = "Suggested_Matches_JSON__c"
)

// StorePayload maps the proposal to the field set sent to the entity store.
// Null-valued optionals are omitted entirely rather than sent as nulls.
func (p *Proposal) StorePayload(ns cdc.Namespace) map[string]any {
	payload := map[string]any{
		ns.Field(fieldAccount): p.AccountID,
	}

	if p.CorrelationID != nil {
		payload[ns.Field(fieldCorrelationID)] = *p.CorrelationID
	}
	if p.Decision != nil {
		payload[ns.Field(fieldDecision)] = string(*p.Decision)
	}
	if p.Reason != nil {
		payload[ns.Field(fieldReason)] = *p.Reason
	}
	if p.ResolvedAt != nil {
		payload[ns.Field(fieldResolvedAt)] = string(*p.ResolvedAt)
	}
	if p.SelectedExternalID != nil {
		payload[ns.Field(fieldSelectedExternalID)] = *p.SelectedExternalID
	}
	if p.Status != "" {
		payload[ns.Field(fieldStatus)] = string(p.Status)
	}
	if p.SuggestedAt != nil {
		payload[ns.Field(fieldSuggestedAt)] = string(*p.SuggestedAt)
	}
	if p.SuggestedMatches != nil {
		payload[ns.Field(fieldSuggestedMatches)] = *p.SuggestedMatches
	}

	return payload
}
