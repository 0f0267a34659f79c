package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// IssueReporter files a customer issue for an order. Implemented by the
// issue application service; kept narrow here so the two services do not
// import each other.
type IssueReporter interface {
	ReportForOrder(ctx context.Context, orderID, userID uuid.UUID, issueType, priority, description string) (uuid.UUID, error)
}

// LifecycleService drives orders through their lifecycle: creation, status
// transitions, tracking info and issue reporting. Status changes publish
// domain events so notification fan-out happens without coupling this
// service to delivery concerns.
type LifecycleService struct {
	orderRepo      order.Repository
	inventory      InventoryGate
	issueReporter  IssueReporter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(orderRepo order.Repository, inventory InventoryGate, logger *zap.Logger) *LifecycleService {
	if inventory == nil {
		inventory = PermissiveInventoryGate{}
	}
	return &LifecycleService{
		orderRepo: orderRepo,
		inventory: inventory,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIssueReporter sets the collaborator that files order issues
func (s *LifecycleService) SetIssueReporter(reporter IssueReporter) {
	s.issueReporter = reporter
}

// Create places a new order in pending status. The inventory gate is
// consulted before the order is persisted: unavailable items reject the
// creation, while an unreachable inventory system only logs a warning.
func (s *LifecycleService) Create(ctx context.Context, req CreateOrderRequest) (*Response, error) {
	items := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		price, err := valueobject.NewMoney(item.UnitPrice, valueobject.DefaultCurrency)
		if err != nil {
			return nil, err
		}
		items = append(items, order.ItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			ImageURL:    item.ImageURL,
		})
	}

	o, err := order.NewOrder(req.UserID, items, req.ShippingAddress, req.BillingAddress, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		o.SetNotes(req.Notes)
	}

	if err := s.checkInventory(ctx, o); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToResponse(o)
	return &response, nil
}

// UpdateStatus transitions an order to a new lifecycle status. A move to
// confirmed first consults the inventory gate: unavailable items reject the
// transition, while an unreachable inventory system only logs a warning.
// Notification side effects ride on the published events and never fail
// the status change itself.
func (s *LifecycleService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*Response, error) {
	newStatus := order.Status(req.Status)
	if !newStatus.IsValid() {
		return nil, shared.NewValidationError("Unknown order status: " + req.Status)
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if newStatus == order.StatusConfirmed {
		if err := s.checkInventory(ctx, o); err != nil {
			return nil, err
		}
	}

	if err := o.TransitionTo(newStatus); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToResponse(o)
	return &response, nil
}

// AddTracking attaches shipment tracking info to an order
func (s *LifecycleService) AddTracking(ctx context.Context, orderID uuid.UUID, req AddTrackingRequest) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.AddTrackingInfo(req.TrackingNumber, req.Carrier); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToResponse(o)
	return &response, nil
}

// ReportIssue files a customer issue against an existing order
func (s *LifecycleService) ReportIssue(ctx context.Context, orderID uuid.UUID, issueType, priority, description string) (uuid.UUID, error) {
	if s.issueReporter == nil {
		return uuid.Nil, shared.NewDomainError(shared.CodeInvalidState, "Issue reporting is not configured")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}

	return s.issueReporter.ReportForOrder(ctx, o.ID, o.UserID, issueType, priority, description)
}

// GetByID retrieves an order by ID
func (s *LifecycleService) GetByID(ctx context.Context, orderID uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *LifecycleService) List(ctx context.Context, filter ListFilter) ([]ListItemResponse, int64, error) {
	f := shared.NewFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		if !order.Status(filter.Status).IsValid() {
			return nil, 0, shared.NewValidationError("Unknown order status: " + filter.Status)
		}
		f.Filters["status"] = filter.Status
	}

	var (
		orders []order.Order
		err    error
	)
	if filter.UserID != nil {
		orders, err = s.orderRepo.FindByUser(ctx, *filter.UserID, f)
	} else {
		orders, err = s.orderRepo.FindAll(ctx, f)
	}
	if err != nil {
		return nil, 0, err
	}

	if filter.UserID != nil {
		f.Filters["user_id"] = filter.UserID.String()
	}
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToListItemResponse(&orders[i])
	}
	return responses, total, nil
}

// checkInventory consults the inventory gate before creation and before
// confirmation
func (s *LifecycleService) checkInventory(ctx context.Context, o *order.Order) error {
	checks := make([]AvailabilityCheck, len(o.Items))
	for i, item := range o.Items {
		checks[i] = AvailabilityCheck{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		}
	}

	result := s.inventory.CheckAvailability(ctx, checks)
	if !result.Reachable {
		s.logger.Warn("inventory system unreachable, confirming without availability check",
			zap.String("order_id", o.ID.String()))
		return nil
	}
	if len(result.Unavailable) > 0 {
		return inventoryConflictError(result.Unavailable)
	}
	return nil
}

// publishEvents hands the aggregate's domain events to the bus. Handler
// failures are logged, never propagated: downstream notification work must
// not fail the originating operation.
func (s *LifecycleService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
	}
	o.ClearDomainEvents()
}
