package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The graph is strictly directed; no transition skips an intermediate state.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusCancelled:
		return target == StatusRefunded
	case StatusDelivered, StatusRefunded:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transition is defined from this status
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusRefunded
}

// TrackingEligible returns true if tracking information may be recorded
// while the order is in this status.
func (s Status) TrackingEligible() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Address is a postal address attached to an order
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the address carries the minimum fields for fulfilment
func (a Address) Validate() error {
	if a.Line1 == "" {
		return shared.NewValidationError("Address line cannot be empty")
	}
	if a.City == "" {
		return shared.NewValidationError("Address city cannot be empty")
	}
	if a.PostalCode == "" {
		return shared.NewValidationError("Address postal code cannot be empty")
	}
	return nil
}

// Item represents a line item in an order
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ImageURL    string          `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates a new order line item
func NewItem(orderID, productID uuid.UUID, productName string, quantity int, unitPrice valueobject.Money, imageURL string) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewValidationError("Unit price must be positive")
	}

	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		ImageURL:    imageURL,
		Amount:      unitPrice.MulInt(int64(quantity)).Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AmountMoney returns the line amount as a Money value object
func (i *Item) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(i.Amount)
}

// Order represents a customer purchase aggregate root.
// It is mutated only through its own methods; the repository enforces
// at-most-one concurrent writer per order via the version field.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	Items           []Item               `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress Address              `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address              `gorm:"embedded;embeddedPrefix:billing_"`
	PaymentMethod   string               `gorm:"type:varchar(50);not null"`
	Status          Status               `gorm:"type:varchar(20);not null;index"`
	TrackingNumber  string               `gorm:"type:varchar(100)"`
	Carrier         string               `gorm:"type:varchar(100)"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Notes           string               `gorm:"type:text"`
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemInput carries the caller-supplied fields for one line item
type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   valueobject.Money
	ImageURL    string
}

// NewOrder creates a new order in PENDING status.
// Items must be non-empty, and every item must have quantity > 0 and price > 0.
func NewOrder(userID uuid.UUID, items []ItemInput, shipping, billing Address, paymentMethod string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("Order must contain at least one item")
	}
	if paymentMethod == "" {
		return nil, shared.NewValidationError("Payment method cannot be empty")
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if err := billing.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]Item, 0, len(items)),
		ShippingAddress:   shipping,
		BillingAddress:    billing,
		PaymentMethod:     paymentMethod,
		Status:            StatusPending,
		TotalAmount:       decimal.Zero,
		Currency:          valueobject.DefaultCurrency,
	}

	for _, in := range items {
		item, err := NewItem(o.ID, in.ProductID, in.ProductName, in.Quantity, in.UnitPrice, in.ImageURL)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, *item)
	}
	o.recalculateTotal()

	o.AddDomainEvent(NewCreatedEvent(o))

	return o, nil
}

// TransitionTo moves the order to newStatus if the transition graph allows it
func (o *Order) TransitionTo(newStatus Status) error {
	if !newStatus.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown order status %q", newStatus))
	}
	if !o.Status.CanTransitionTo(newStatus) {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, newStatus))
	}

	from := o.Status
	now := time.Now()
	o.Status = newStatus
	o.UpdatedAt = now

	switch newStatus {
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}

	o.AddDomainEvent(NewStatusChangedEvent(o, from))

	return nil
}

// AddTrackingInfo records carrier tracking details. Allowed only while the
// order is in a tracking-eligible status.
func (o *Order) AddTrackingInfo(trackingNumber, carrier string) error {
	if trackingNumber == "" {
		return shared.NewValidationError("Tracking number cannot be empty")
	}
	if carrier == "" {
		return shared.NewValidationError("Carrier cannot be empty")
	}
	if !o.Status.TrackingEligible() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot add tracking info to order in %s status", o.Status))
	}

	o.TrackingNumber = trackingNumber
	o.Carrier = carrier
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewTrackingAddedEvent(o))

	return nil
}

// SetNotes sets free-form notes on the order
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// recalculateTotal recomputes the order total from its items
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// TotalMoney returns the order total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmount, o.Currency)
	return m
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// IsTerminal returns true if the order is delivered or refunded
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}
