package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/issue"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func fanoutFixture(t *testing.T) (*FanoutHandler, *DeliveryQueue, *Center, uuid.UUID) {
	t.Helper()
	store := newMemoryPrefsStore()
	userID := uuid.New()
	require.NoError(t, store.Save(context.Background(), emailOnlyPrefs(userID)))

	q := startQueue(t, store, testConfig(), &scriptedAdapter{channel: notification.ChannelEmail})
	center := NewCenter(0, zap.NewNop())
	return NewFanoutHandler(q, center, zap.NewNop()), q, center, userID
}

func fixtureOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	addr := order.Address{Line1: "12 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "IN"}
	o, err := order.NewOrder(userID, []order.ItemInput{{
		ProductID:   uuid.New(),
		ProductName: "Ceramic Mug",
		Quantity:    2,
		UnitPrice:   valueobject.NewMoneyINR(decimal.NewFromInt(100)),
	}}, addr, addr, "card")
	require.NoError(t, err)
	return o
}

func TestFanoutHandler_OrderCreated(t *testing.T) {
	handler, q, center, userID := fanoutFixture(t)
	o := fixtureOrder(t, userID)

	require.NoError(t, handler.Handle(context.Background(), order.NewCreatedEvent(o)))

	feed := center.ListForUser(userID)
	require.Len(t, feed, 1)
	assert.Equal(t, notification.EventOrderConfirmation, feed[0].EventType)
	assert.Equal(t, "Order placed", feed[0].Title)

	jobs := q.JobsForOrder(o.ID)
	require.Len(t, jobs, 1)
	assert.Equal(t, notification.ChannelEmail, jobs[0].Channel)
}

func TestFanoutHandler_StatusChanges(t *testing.T) {
	tests := []struct {
		to        order.Status
		eventType notification.EventType
	}{
		{order.StatusConfirmed, notification.EventOrderConfirmation},
		{order.StatusProcessing, notification.EventStatusUpdates},
		{order.StatusShipped, notification.EventShippingUpdates},
		{order.StatusDelivered, notification.EventDeliveryConfirmation},
		{order.StatusCancelled, notification.EventStatusUpdates},
		{order.StatusRefunded, notification.EventStatusUpdates},
	}

	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			handler, _, center, userID := fanoutFixture(t)
			o := fixtureOrder(t, userID)
			o.Status = tt.to

			event := order.NewStatusChangedEvent(o, order.StatusPending)
			require.NoError(t, handler.Handle(context.Background(), event))

			feed := center.ListForUser(userID)
			require.Len(t, feed, 1)
			assert.Equal(t, tt.eventType, feed[0].EventType)
		})
	}
}

func TestFanoutHandler_TrackingAdded(t *testing.T) {
	handler, _, center, userID := fanoutFixture(t)
	o := fixtureOrder(t, userID)
	o.Status = order.StatusProcessing
	require.NoError(t, o.AddTrackingInfo("TRK-1001", "BlueDart"))
	events := o.GetDomainEvents()
	tracking := events[len(events)-1]

	require.NoError(t, handler.Handle(context.Background(), tracking))

	feed := center.ListForUser(userID)
	require.Len(t, feed, 1)
	assert.Equal(t, notification.EventShippingUpdates, feed[0].EventType)
	assert.Contains(t, feed[0].Message, "TRK-1001")
	require.Len(t, feed[0].Actions, 1)
	assert.Equal(t, CommandTrackOrder, feed[0].Actions[0].Command)
}

func TestFanoutHandler_IssueResolved(t *testing.T) {
	handler, q, center, userID := fanoutFixture(t)

	i, err := issue.NewIssue(uuid.New(), userID, issue.TypeDamage, issue.PriorityHigh, "Box crushed")
	require.NoError(t, err)
	require.NoError(t, i.Resolve("Replacement shipped", ""))
	events := i.GetDomainEvents()
	resolved := events[len(events)-1]

	require.NoError(t, handler.Handle(context.Background(), resolved))

	feed := center.ListForUser(userID)
	require.Len(t, feed, 1)
	assert.Equal(t, notification.EventIssueResolution, feed[0].EventType)
	assert.Contains(t, feed[0].Message, "Replacement shipped")

	require.Eventually(t, func() bool {
		return q.GetQueueStats().Sent == 1
	}, time.Second, 5*time.Millisecond)
}

func TestFanoutHandler_IssueReportedAcknowledged(t *testing.T) {
	handler, _, center, userID := fanoutFixture(t)

	i, err := issue.NewIssue(uuid.New(), userID, issue.TypeDelivery, issue.PriorityMedium, "Package never arrived")
	require.NoError(t, err)
	events := i.GetDomainEvents()
	reported := events[len(events)-1]

	require.NoError(t, handler.Handle(context.Background(), reported))

	feed := center.ListForUser(userID)
	require.Len(t, feed, 1)
	assert.Equal(t, notification.EventIssueResolution, feed[0].EventType)
	assert.Equal(t, "Issue received", feed[0].Title)
}

func TestFanoutHandler_DeliveryFailureDoesNotPropagate(t *testing.T) {
	store := newMemoryPrefsStore()
	userID := uuid.New()
	prefs := emailOnlyPrefs(userID)
	require.NoError(t, store.Save(context.Background(), prefs))

	adapter := &scriptedAdapter{channel: notification.ChannelEmail, failures: 10}
	q := startQueue(t, store, testConfig(), adapter)
	center := NewCenter(0, zap.NewNop())
	handler := NewFanoutHandler(q, center, zap.NewNop())

	o := fixtureOrder(t, userID)
	o.Status = order.StatusConfirmed
	event := order.NewStatusChangedEvent(o, order.StatusPending)

	// Enqueue succeeds even though every dispatch will fail
	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Len(t, center.ListForUser(userID), 1)
}
