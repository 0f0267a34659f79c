package issue

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/issue"
)

// ReportRequest represents a request to report an issue for an order
type ReportRequest struct {
	OrderID     uuid.UUID `json:"order_id" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	Priority    string    `json:"priority"`
	Description string    `json:"description" binding:"required"`
}

// ResolveRequest represents a request to resolve an issue
type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
	NextSteps  string `json:"next_steps"`
}

// CloseRequest represents a request to close a resolved issue
type CloseRequest struct {
	CustomerSatisfied bool `json:"customer_satisfied"`
}

// ListFilter carries pagination and filter fields for issue listings
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// Response represents a full issue view
type Response struct {
	ID                uuid.UUID  `json:"id"`
	OrderID           uuid.UUID  `json:"order_id"`
	UserID            uuid.UUID  `json:"user_id"`
	Type              string     `json:"type"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	Description       string     `json:"description"`
	Resolution        string     `json:"resolution,omitempty"`
	NextSteps         string     `json:"next_steps,omitempty"`
	CustomerSatisfied *bool      `json:"customer_satisfied,omitempty"`
	ReportedAt        time.Time  `json:"reported_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ToResponse converts a domain Issue to a response DTO
func ToResponse(i *issue.Issue) Response {
	return Response{
		ID:                i.ID,
		OrderID:           i.OrderID,
		UserID:            i.UserID,
		Type:              string(i.Type),
		Priority:          string(i.Priority),
		Status:            i.Status.String(),
		Description:       i.Description,
		Resolution:        i.Resolution,
		NextSteps:         i.NextSteps,
		CustomerSatisfied: i.CustomerSatisfied,
		ReportedAt:        i.ReportedAt,
		ResolvedAt:        i.ResolvedAt,
		ClosedAt:          i.ClosedAt,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
