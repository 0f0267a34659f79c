package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
)

// CreateOrderRequest represents a request to place a new order
type CreateOrderRequest struct {
	UserID          uuid.UUID         `json:"user_id" binding:"required"`
	Items           []CreateItemInput `json:"items" binding:"required,min=1"`
	ShippingAddress order.Address     `json:"shipping_address" binding:"required"`
	BillingAddress  order.Address     `json:"billing_address" binding:"required"`
	PaymentMethod   string            `json:"payment_method" binding:"required"`
	Notes           string            `json:"notes"`
}

// CreateItemInput represents one line item in the create request
type CreateItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	ImageURL    string          `json:"image_url"`
}

// UpdateStatusRequest represents a request to move an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddTrackingRequest represents a request to attach shipment tracking to an order
type AddTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Carrier        string `json:"carrier" binding:"required"`
}

// ListFilter carries pagination and filter fields for order listings
type ListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	UserID   *uuid.UUID `form:"user_id"`
	Status   string     `form:"status"`
}

// ItemResponse represents one order line item
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// Response represents a full order view
type Response struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Items           []ItemResponse  `json:"items"`
	ItemCount       int             `json:"item_count"`
	ShippingAddress order.Address   `json:"shipping_address"`
	BillingAddress  order.Address   `json:"billing_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	Carrier         string          `json:"carrier,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Notes           string          `json:"notes,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ListItemResponse represents an order row in listings
type ListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ItemCount   int             `json:"item_count"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToResponse converts a domain Order to a full response DTO
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = ItemResponse{
			ID:          o.Items[i].ID,
			ProductID:   o.Items[i].ProductID,
			ProductName: o.Items[i].ProductName,
			Quantity:    o.Items[i].Quantity,
			UnitPrice:   o.Items[i].UnitPrice,
			Amount:      o.Items[i].Amount,
			ImageURL:    o.Items[i].ImageURL,
		}
	}

	return Response{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ItemCount:       o.ItemCount(),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status.String(),
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		TotalAmount:     o.TotalAmount,
		Currency:        string(o.Currency),
		Notes:           o.Notes,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// ToListItemResponse converts a domain Order to a list row DTO
func ToListItemResponse(o *order.Order) ListItemResponse {
	return ListItemResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		ItemCount:   o.ItemCount(),
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		Currency:    string(o.Currency),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
