package cdc

// FieldOrderStatus is the Order field whose change can trigger
// reconciliation.
const FieldOrderStatus = "Status"

// OrderStatusActivated is the Status value that marks an Order as activated.
const OrderStatusActivated = "Activated"

// OrderPayload is the sparse Order snapshot carried by a change event.
type OrderPayload struct {
	ChangeEventHeader ChangeHeader `json:"ChangeEventHeader"`

	Status           *string  `json:"Status"`
	AccountID        *string  `json:"AccountId"`
	OrderNumber      *string  `json:"OrderNumber"`
	TotalAmount      *float64 `json:"TotalAmount"`
	EffectiveDate    *int64   `json:"EffectiveDate"`
	EndDate          *int64   `json:"EndDate"`
	CreatedDate      *int64   `json:"CreatedDate"`
	CreatedByID      *string  `json:"CreatedById"`
	LastModifiedDate *int64   `json:"LastModifiedDate"`
	LastModifiedByID *string  `json:"LastModifiedById"`
}

func (p *OrderPayload) normalize() {
	p.ChangeEventHeader.normalize()
}

// Order is an Order's field state detached from any change header.
type Order struct {
	Status        *string
	AccountID     *string
	OrderNumber   *string
	TotalAmount   *float64
	EffectiveDate *int64
	EndDate       *int64
}

// Activated reports whether the order's status is Activated.
func (o *Order) Activated() bool {
	return o.Status != nil && *o.Status == OrderStatusActivated
}

// OrderFromChangeEvent projects the partial state carried by a change event.
// The result is not authoritative.
func OrderFromChangeEvent(event *OrderChangeEvent) *Order {
	p := event.Payload
	return &Order{
		Status:        p.Status,
		AccountID:     p.AccountID,
		OrderNumber:   p.OrderNumber,
		TotalAmount:   p.TotalAmount,
		EffectiveDate: p.EffectiveDate,
		EndDate:       p.EndDate,
	}
}

// StoredOrder is the flat shape returned by the entity store.
type StoredOrder struct {
	Status        *string  `json:"Status"`
	AccountID     *string  `json:"AccountId"`
	OrderNumber   *string  `json:"OrderNumber"`
	TotalAmount   *float64 `json:"TotalAmount"`
	EffectiveDate *int64   `json:"EffectiveDate"`
	EndDate       *int64   `json:"EndDate"`
}

// OrderFromStoredFields builds an authoritative Order from a store snapshot.
func OrderFromStoredFields(stored *StoredOrder) *Order {
	return &Order{
		Status:        stored.Status,
		AccountID:     stored.AccountID,
		OrderNumber:   stored.OrderNumber,
		TotalAmount:   stored.TotalAmount,
		EffectiveDate: stored.EffectiveDate,
		EndDate:       stored.EndDate,
	}
}
