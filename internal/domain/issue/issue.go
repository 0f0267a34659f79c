package issue

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a customer issue
type Status string

const (
	StatusReported      Status = "REPORTED"
	StatusInvestigating Status = "INVESTIGATING"
	StatusResolved      Status = "RESOLVED"
	StatusClosed        Status = "CLOSED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusReported, StatusInvestigating, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Type classifies what went wrong with the order
type Type string

const (
	TypeDelivery Type = "delivery"
	TypeDamage   Type = "damage"
	TypeMissing  Type = "missing"
	TypeQuality  Type = "quality"
	TypeOther    Type = "other"
)

// IsValid checks if the issue type is a known value
func (t Type) IsValid() bool {
	switch t {
	case TypeDelivery, TypeDamage, TypeMissing, TypeQuality, TypeOther:
		return true
	}
	return false
}

// Priority ranks how urgently an issue needs attention
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is a known value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Issue is a customer-reported problem tied to a specific order. It is an
// aggregate root: resolution and closing go through its methods so the
// status machine and the required resolution text are enforced in one place.
type Issue struct {
	shared.BaseAggregateRoot
	OrderID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type              Type       `gorm:"not null" json:"type"`
	Priority          Priority   `gorm:"not null" json:"priority"`
	Status            Status     `gorm:"not null;index" json:"status"`
	Description       string     `gorm:"type:text;not null" json:"description"`
	Resolution        string     `gorm:"type:text" json:"resolution"`
	NextSteps         string     `gorm:"type:text" json:"next_steps"`
	CustomerSatisfied *bool      `json:"customer_satisfied,omitempty"`
	ReportedAt        time.Time  `gorm:"not null" json:"reported_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
}

// TableName returns the table name for GORM
func (Issue) TableName() string {
	return "issues"
}

// NewIssue reports a new issue against an order. The issue starts in
// the reported state; priority defaults to medium when unset.
func NewIssue(orderID, userID uuid.UUID, issueType Type, priority Priority, description string) (*Issue, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("order id is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user id is required")
	}
	if !issueType.IsValid() {
		return nil, shared.NewValidationError("unknown issue type: " + string(issueType))
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError("unknown priority: " + string(priority))
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("description cannot be empty")
	}

	issue := &Issue{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		UserID:            userID,
		Type:              issueType,
		Priority:          priority,
		Status:            StatusReported,
		Description:       strings.TrimSpace(description),
		ReportedAt:        time.Now(),
	}
	issue.AddDomainEvent(NewReportedEvent(issue))
	return issue, nil
}

// StartInvestigation moves a reported issue to investigating
func (i *Issue) StartInvestigation() error {
	if i.Status != StatusReported {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only reported issues can be moved to investigating, current status: "+i.Status.String())
	}
	i.Status = StatusInvestigating
	i.Touch()
	return nil
}

// Resolve records the resolution text and moves the issue to resolved.
// A non-empty resolution is required; without one the issue keeps its
// current status untouched. Next steps are optional follow-up guidance
// for the customer.
func (i *Issue) Resolve(resolution, nextSteps string) error {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return shared.NewValidationError("resolution cannot be empty")
	}
	if i.Status != StatusReported && i.Status != StatusInvestigating {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Issue cannot be resolved from status: "+i.Status.String())
	}
	now := time.Now()
	i.Status = StatusResolved
	i.Resolution = resolution
	i.NextSteps = strings.TrimSpace(nextSteps)
	i.ResolvedAt = &now
	i.Touch()
	i.AddDomainEvent(NewResolvedEvent(i))
	return nil
}

// Close finishes a resolved issue, recording whether the customer was
// satisfied with the outcome
func (i *Issue) Close(customerSatisfied bool) error {
	if i.Status != StatusResolved {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Only resolved issues can be closed, current status: "+i.Status.String())
	}
	now := time.Now()
	i.Status = StatusClosed
	i.CustomerSatisfied = &customerSatisfied
	i.ClosedAt = &now
	i.Touch()
	return nil
}

// IsOpen reports whether the issue still needs attention
func (i *Issue) IsOpen() bool {
	return i.Status == StatusReported || i.Status == StatusInvestigating
}
