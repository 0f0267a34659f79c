package issue

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

const AggregateTypeIssue = "issue"

const (
	EventTypeIssueReported = "issue.reported"
	EventTypeIssueResolved = "issue.resolved"
)

// ReportedEvent is emitted when a customer reports a new issue
type ReportedEvent struct {
	shared.BaseDomainEvent
	IssueID     uuid.UUID `json:"issue_id"`
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Type        Type      `json:"type"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description"`
}

func NewReportedEvent(i *Issue) *ReportedEvent {
	return &ReportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIssueReported, AggregateTypeIssue, i.ID),
		IssueID:         i.ID,
		OrderID:         i.OrderID,
		UserID:          i.UserID,
		Type:            i.Type,
		Priority:        i.Priority,
		Description:     i.Description,
	}
}

func (e *ReportedEvent) EventType() string {
	return EventTypeIssueReported
}

// ResolvedEvent is emitted when an issue moves to resolved
type ResolvedEvent struct {
	shared.BaseDomainEvent
	IssueID    uuid.UUID `json:"issue_id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	Resolution string    `json:"resolution"`
	NextSteps  string    `json:"next_steps"`
}

func NewResolvedEvent(i *Issue) *ResolvedEvent {
	return &ResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIssueResolved, AggregateTypeIssue, i.ID),
		IssueID:         i.ID,
		OrderID:         i.OrderID,
		UserID:          i.UserID,
		Resolution:      i.Resolution,
		NextSteps:       i.NextSteps,
	}
}

func (e *ResolvedEvent) EventType() string {
	return EventTypeIssueResolved
}
