package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderTrackingAdded = "OrderTrackingAdded"
)

// ItemInfo carries line-item information inside events
type ItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

func itemInfos(o *Order) []ItemInfo {
	items := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return items
}

// CreatedEvent is raised when a new order is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID            `json:"order_id"`
	UserID      uuid.UUID            `json:"user_id"`
	Items       []ItemInfo           `json:"items"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Currency    valueobject.Currency `json:"currency"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		Items:           itemInfos(o),
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
	}
}

// EventType returns the event type name
func (e *CreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// StatusChangedEvent is raised when an order moves along the lifecycle graph
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	From    Status    `json:"from"`
	To      Status    `json:"to"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(o *Order, from Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		From:            from,
		To:              o.Status,
	}
}

// EventType returns the event type name
func (e *StatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}

// TrackingAddedEvent is raised when tracking details are recorded on an order
type TrackingAddedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	UserID         uuid.UUID `json:"user_id"`
	TrackingNumber string    `json:"tracking_number"`
	Carrier        string    `json:"carrier"`
}

// NewTrackingAddedEvent creates a new TrackingAddedEvent
func NewTrackingAddedEvent(o *Order) *TrackingAddedEvent {
	return &TrackingAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderTrackingAdded, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
	}
}

// EventType returns the event type name
func (e *TrackingAddedEvent) EventType() string {
	return EventTypeOrderTrackingAdded
}
