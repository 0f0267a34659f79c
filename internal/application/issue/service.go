package issue

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/issue"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service handles the customer issue workflow from report to close
type Service struct {
	issueRepo      issue.Repository
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new issue Service
func NewService(issueRepo issue.Repository, orderRepo order.Repository, logger *zap.Logger) *Service {
	return &Service{
		issueRepo: issueRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Report files a new issue for an order. The order must exist; the issue
// is attributed to the order's owner.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	i, err := issue.NewIssue(o.ID, o.UserID, issue.Type(req.Type), issue.Priority(req.Priority), req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.issueRepo.Save(ctx, i); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, i)

	response := ToResponse(i)
	return &response, nil
}

// ReportForOrder files an issue for an already-loaded order. It backs the
// order lifecycle service's issue reporting entry point.
func (s *Service) ReportForOrder(ctx context.Context, orderID, userID uuid.UUID, issueType, priority, description string) (uuid.UUID, error) {
	i, err := issue.NewIssue(orderID, userID, issue.Type(issueType), issue.Priority(priority), description)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.issueRepo.Save(ctx, i); err != nil {
		return uuid.Nil, err
	}

	s.publishEvents(ctx, i)
	return i.ID, nil
}

// StartInvestigation moves a reported issue to investigating
func (s *Service) StartInvestigation(ctx context.Context, issueID uuid.UUID) (*Response, error) {
	i, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if err := i.StartInvestigation(); err != nil {
		return nil, err
	}

	if err := s.issueRepo.Save(ctx, i); err != nil {
		return nil, err
	}

	response := ToResponse(i)
	return &response, nil
}

// Resolve records a resolution and publishes the resolved event so the
// customer gets an issue-resolution notification
func (s *Service) Resolve(ctx context.Context, issueID uuid.UUID, req ResolveRequest) (*Response, error) {
	i, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if err := i.Resolve(req.Resolution, req.NextSteps); err != nil {
		return nil, err
	}

	if err := s.issueRepo.Save(ctx, i); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, i)

	response := ToResponse(i)
	return &response, nil
}

// Close finishes a resolved issue
func (s *Service) Close(ctx context.Context, issueID uuid.UUID, req CloseRequest) (*Response, error) {
	i, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if err := i.Close(req.CustomerSatisfied); err != nil {
		return nil, err
	}

	if err := s.issueRepo.Save(ctx, i); err != nil {
		return nil, err
	}

	response := ToResponse(i)
	return &response, nil
}

// GetByID retrieves an issue by ID
func (s *Service) GetByID(ctx context.Context, issueID uuid.UUID) (*Response, error) {
	i, err := s.issueRepo.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	response := ToResponse(i)
	return &response, nil
}

// ListByOrder retrieves all issues filed against an order
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Response, error) {
	issues, err := s.issueRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]Response, len(issues))
	for idx, i := range issues {
		responses[idx] = ToResponse(i)
	}
	return responses, nil
}

// List retrieves issues with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Response, int64, error) {
	f := shared.NewFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		if !issue.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewValidationError("Unknown issue status: " + filter.Status)
		}
		f.Filters["status"] = filter.Status
	}

	issues, err := s.issueRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.issueRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]Response, len(issues))
	for idx, i := range issues {
		responses[idx] = ToResponse(i)
	}
	return responses, total, nil
}

func (s *Service) publishEvents(ctx context.Context, i *issue.Issue) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range i.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish issue event",
				zap.String("event_type", event.EventType()),
				zap.String("issue_id", i.ID.String()),
				zap.Error(err))
		}
	}
	i.ClearDomainEvents()
}
