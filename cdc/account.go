package cdc

import "strings"

// Custom field names on the Account entity. Names carrying the custom-field
// marker suffix are namespaced by the store client before they go on the
// wire; the canonical, unprefixed names are used everywhere in process.
const (
	FieldExternalCustomerID = "External_Customer_ID__c"
	FieldRequiresMapping    = "Requires_Customer_Mapping__c"
)

// Address is a compound address value on an Account.
type Address struct {
	Street          *string  `json:"Street"`
	City            *string  `json:"City"`
	State           *string  `json:"State"`
	PostalCode      *string  `json:"PostalCode"`
	Country         *string  `json:"Country"`
	Latitude        *float64 `json:"Latitude"`
	Longitude       *float64 `json:"Longitude"`
	GeocodeAccuracy *string  `json:"GeocodeAccuracy"`
}

// AccountPayload is the sparse Account snapshot carried by a change event.
// Fields outside the header's changed set may be stale or nil even though the
// struct has a slot for them; only a store fetch yields authoritative state.
type AccountPayload struct {
	ChangeEventHeader ChangeHeader `json:"ChangeEventHeader"`

	Name               *string  `json:"Name"`
	Type               *string  `json:"Type"`
	ParentID           *string  `json:"ParentId"`
	BillingAddress     *Address `json:"BillingAddress"`
	ShippingAddress    *Address `json:"ShippingAddress"`
	Phone              *string  `json:"Phone"`
	Fax                *string  `json:"Fax"`
	AccountNumber      *string  `json:"AccountNumber"`
	Website            *string  `json:"Website"`
	Industry           *string  `json:"Industry"`
	AnnualRevenue      *float64 `json:"AnnualRevenue"`
	NumberOfEmployees  *int64   `json:"NumberOfEmployees"`
	Ownership          *string  `json:"Ownership"`
	TickerSymbol       *string  `json:"TickerSymbol"`
	Description        *string  `json:"Description"`
	Rating             *string  `json:"Rating"`
	Site               *string  `json:"Site"`
	OwnerID            *string  `json:"OwnerId"`
	CreatedDate        *int64   `json:"CreatedDate"`
	CreatedByID        *string  `json:"CreatedById"`
	LastModifiedDate   *int64   `json:"LastModifiedDate"`
	LastModifiedByID   *string  `json:"LastModifiedById"`
	AccountSource      *string  `json:"AccountSource"`
	ExternalCustomerID *string  `json:"External_Customer_ID__c"`
	RequiresMapping    *bool    `json:"Requires_Customer_Mapping__c"`
}

func (p *AccountPayload) normalize() {
	p.ChangeEventHeader.normalize()
}

// Account is an Account's field state detached from any change header. It is
// authoritative only when produced by FromStoredAccount.
type Account struct {
	Name               *string
	Type               *string
	ParentID           *string
	BillingAddress     *Address
	ShippingAddress    *Address
	Phone              *string
	Fax                *string
	AccountNumber      *string
	Website            *string
	Industry           *string
	AnnualRevenue      *float64
	NumberOfEmployees  *int64
	Ownership          *string
	TickerSymbol       *string
	Description        *string
	Rating             *string
	Site               *string
	OwnerID            *string
	AccountSource      *string
	ExternalCustomerID *string
	RequiresMapping    *bool
}

// AccountFromChangeEvent projects the partial state carried by a change
// event. The result is not authoritative.
func AccountFromChangeEvent(event *AccountChangeEvent) *Account {
	p := event.Payload
	return &Account{
		Name:               p.Name,
		Type:               p.Type,
		ParentID:           p.ParentID,
		BillingAddress:     p.BillingAddress,
		ShippingAddress:    p.ShippingAddress,
		Phone:              p.Phone,
		Fax:                p.Fax,
		AccountNumber:      p.AccountNumber,
		Website:            p.Website,
		Industry:           p.Industry,
		AnnualRevenue:      p.AnnualRevenue,
		NumberOfEmployees:  p.NumberOfEmployees,
		Ownership:          p.Ownership,
		TickerSymbol:       p.TickerSymbol,
		Description:        p.Description,
		Rating:             p.Rating,
		Site:               p.Site,
		OwnerID:            p.OwnerID,
		AccountSource:      p.AccountSource,
		ExternalCustomerID: p.ExternalCustomerID,
		RequiresMapping:    p.RequiresMapping,
	}
}

// StoredAccount is the flat shape returned by the entity store, which carries
// address components as individual fields rather than compound values.
type StoredAccount struct {
	Name               *string  `json:"Name"`
	Type               *string  `json:"Type"`
	ParentID           *string  `json:"ParentId"`
	BillingStreet      *string  `json:"BillingStreet"`
	BillingCity        *string  `json:"BillingCity"`
	BillingState       *string  `json:"BillingState"`
	BillingPostalCode  *string  `json:"BillingPostalCode"`
	BillingCountry     *string  `json:"BillingCountry"`
	ShippingStreet     *string  `json:"ShippingStreet"`
	ShippingCity       *string  `json:"ShippingCity"`
	ShippingState      *string  `json:"ShippingState"`
	ShippingPostalCode *string  `json:"ShippingPostalCode"`
	ShippingCountry    *string  `json:"ShippingCountry"`
	Phone              *string  `json:"Phone"`
	Fax                *string  `json:"Fax"`
	AccountNumber      *string  `json:"AccountNumber"`
	Website            *string  `json:"Website"`
	Industry           *string  `json:"Industry"`
	AnnualRevenue      *float64 `json:"AnnualRevenue"`
	NumberOfEmployees  *int64   `json:"NumberOfEmployees"`
	Ownership          *string  `json:"Ownership"`
	TickerSymbol       *string  `json:"TickerSymbol"`
	Description        *string  `json:"Description"`
	Rating             *string  `json:"Rating"`
	Site               *string  `json:"Site"`
	OwnerID            *string  `json:"OwnerId"`
	AccountSource      *string  `json:"AccountSource"`
	ExternalCustomerID *string  `json:"External_Customer_ID__c"`
	RequiresMapping    *bool    `json:"Requires_Customer_Mapping__c"`
}

// AccountFromStoredFields builds an authoritative Account from a store
// snapshot.
func AccountFromStoredFields(stored *StoredAccount) *Account {
	return &Account{
		Name: stored.Name,
		Type: stored.Type,
		ParentID: stored.ParentID,
		BillingAddress: &Address{
			Street:     stored.BillingStreet,
			City:       stored.BillingCity,
			State:      stored.BillingState,
			PostalCode: stored.BillingPostalCode,
			Country:    stored.BillingCountry,
		},
		ShippingAddress: &Address{
			Street:     stored.ShippingStreet,
			City:       stored.ShippingCity,
			State:      stored.ShippingState,
			PostalCode: stored.ShippingPostalCode,
			Country:    stored.ShippingCountry,
		},
		Phone:              stored.Phone,
		Fax:                stored.Fax,
		AccountNumber:      stored.AccountNumber,
		Website:            stored.Website,
		Industry:           stored.Industry,
		AnnualRevenue:      stored.AnnualRevenue,
		NumberOfEmployees:  stored.NumberOfEmployees,
		Ownership:          stored.Ownership,
		TickerSymbol:       stored.TickerSymbol,
		Description:        stored.Description,
		Rating:             stored.Rating,
		Site:               stored.Site,
		OwnerID:            stored.OwnerID,
		AccountSource:      stored.AccountSource,
		ExternalCustomerID: stored.ExternalCustomerID,
		RequiresMapping:    stored.RequiresMapping,
	}
}

// Text returns the string value of an optional field, or "" when unset.
// Identifying attributes fed to free-text search must never render as the
// literal token "null".
func Text(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Blank reports whether an optional string is unset or whitespace-only.
func Blank(value *string) bool {
	return value == nil || strings.TrimSpace(*value) == ""
}
