package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/issue"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Command names understood by the notification center's action registry
const (
	CommandViewOrder   = "viewOrder"
	CommandTrackOrder  = "trackOrder"
	CommandReportIssue = "reportIssue"
)

// FanoutHandler turns order and issue domain events into notification work:
// an in-app entry on the center plus delivery jobs on the queue. It runs on
// the event bus, so its failures never reach the service that raised the
// event.
type FanoutHandler struct {
	queue  *DeliveryQueue
	center *Center
	logger *zap.Logger
}

// NewFanoutHandler creates a new FanoutHandler
func NewFanoutHandler(queue *DeliveryQueue, center *Center, logger *zap.Logger) *FanoutHandler {
	return &FanoutHandler{
		queue:  queue,
		center: center,
		logger: logger,
	}
}

// EventTypes returns the events this handler subscribes to
func (h *FanoutHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderTrackingAdded,
		issue.EventTypeIssueReported,
		issue.EventTypeIssueResolved,
	}
}

// Handle dispatches one domain event to the notification pipeline
func (h *FanoutHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.CreatedEvent:
		return h.fanout(ctx, fanoutInput{
			userID:    e.UserID,
			orderID:   e.OrderID,
			eventType: notification.EventOrderConfirmation,
			title:     "Order placed",
			message:   fmt.Sprintf("Your order for %d item(s) totalling %s %s has been placed.", len(e.Items), e.TotalAmount.StringFixed(2), e.Currency),
			actions:   []Action{{Label: "View order", Command: CommandViewOrder}},
		})
	case *order.StatusChangedEvent:
		return h.handleStatusChange(ctx, e)
	case *order.TrackingAddedEvent:
		return h.fanout(ctx, fanoutInput{
			userID:    e.UserID,
			orderID:   e.OrderID,
			eventType: notification.EventShippingUpdates,
			title:     "Tracking available",
			message:   fmt.Sprintf("Your order is trackable with %s, tracking number %s.", e.Carrier, e.TrackingNumber),
			actions:   []Action{{Label: "Track order", Command: CommandTrackOrder}},
		})
	case *issue.ReportedEvent:
		// Acknowledge the report right away so the customer knows
		// someone will look at it, before any resolution exists.
		return h.fanout(ctx, fanoutInput{
			userID:    e.UserID,
			orderID:   e.OrderID,
			eventType: notification.EventIssueResolution,
			title:     "Issue received",
			message:   "We have received your report and our support team is looking into it.",
			actions:   []Action{{Label: "View order", Command: CommandViewOrder}},
		})
	case *issue.ResolvedEvent:
		message := "Your reported issue has been resolved: " + e.Resolution
		if e.NextSteps != "" {
			message += " Next steps: " + e.NextSteps
		}
		return h.fanout(ctx, fanoutInput{
			userID:    e.UserID,
			orderID:   e.OrderID,
			eventType: notification.EventIssueResolution,
			title:     "Issue resolved",
			message:   message,
			actions:   []Action{{Label: "View order", Command: CommandViewOrder}},
		})
	default:
		h.logger.Debug("fanout handler ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}
}

// handleStatusChange maps a lifecycle transition to its notification class
func (h *FanoutHandler) handleStatusChange(ctx context.Context, e *order.StatusChangedEvent) error {
	in := fanoutInput{userID: e.UserID, orderID: e.OrderID}

	switch e.To {
	case order.StatusConfirmed:
		in.eventType = notification.EventOrderConfirmation
		in.title = "Order confirmed"
		in.message = "Your order has been confirmed and will be prepared shortly."
		in.actions = []Action{{Label: "View order", Command: CommandViewOrder}}
	case order.StatusProcessing:
		in.eventType = notification.EventStatusUpdates
		in.title = "Order processing"
		in.message = "Your order is being prepared for shipment."
	case order.StatusShipped:
		in.eventType = notification.EventShippingUpdates
		in.title = "Order shipped"
		in.message = "Your order is on its way."
		in.actions = []Action{{Label: "Track order", Command: CommandTrackOrder}}
	case order.StatusDelivered:
		in.eventType = notification.EventDeliveryConfirmation
		in.title = "Order delivered"
		in.message = "Your order has been delivered. We hope you enjoy it."
		in.actions = []Action{{Label: "Report an issue", Command: CommandReportIssue}}
	case order.StatusCancelled:
		in.eventType = notification.EventStatusUpdates
		in.title = "Order cancelled"
		in.message = "Your order has been cancelled."
	case order.StatusRefunded:
		in.eventType = notification.EventStatusUpdates
		in.title = "Order refunded"
		in.message = "Your refund has been processed."
	default:
		return nil
	}
	return h.fanout(ctx, in)
}

type fanoutInput struct {
	userID    uuid.UUID
	orderID   uuid.UUID
	eventType notification.EventType
	title     string
	message   string
	actions   []Action
}

func (h *FanoutHandler) fanout(ctx context.Context, in fanoutInput) error {
	h.center.Show(in.userID, in.orderID, in.eventType, in.title, in.message, in.actions)

	_, err := h.queue.Enqueue(ctx, in.userID, notification.Payload{
		OrderID:   in.orderID,
		EventType: in.eventType,
		Subject:   in.title,
		Body:      in.message,
	})
	if err != nil {
		h.logger.Error("failed to enqueue notification deliveries",
			zap.String("order_id", in.orderID.String()),
			zap.String("event_type", in.eventType.String()),
			zap.Error(err))
		return err
	}
	return nil
}
