package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// PreferencesService is the slice of the preferences application layer
// the HTTP handlers depend on
type PreferencesService interface {
	Resolve(ctx context.Context, userID uuid.UUID) (notification.Preferences, error)
	Update(ctx context.Context, prefs notification.Preferences) error
}

// NotificationCenter is the in-app feed surface the HTTP handlers depend on
type NotificationCenter interface {
	ListForUser(userID uuid.UUID) []appnotification.InAppNotification
	UnreadCount(userID uuid.UUID) int
	MarkRead(id uuid.UUID) error
	Hide(id uuid.UUID) error
	ClearAll(userID uuid.UUID)
	ClearByType(userID uuid.UUID, eventType notification.EventType)
	ExecuteAction(ctx context.Context, notificationID uuid.UUID, command string) error
}

// NotificationQueue is the delivery queue surface the HTTP handlers depend on
type NotificationQueue interface {
	GetJob(id uuid.UUID) (notification.Job, error)
	JobsForOrder(orderID uuid.UUID) []notification.Job
	GetQueueStats() appnotification.QueueStats
	GetDeliveryStats() appnotification.DeliveryStats
}

// NotificationHandler serves the notification preferences, in-app feed
// and delivery stats endpoints
type NotificationHandler struct {
	BaseHandler
	prefs  PreferencesService
	center NotificationCenter
	queue  NotificationQueue
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(prefs PreferencesService, center NotificationCenter, queue NotificationQueue, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(logger),
		prefs:       prefs,
		center:      center,
		queue:       queue,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	{
		n.GET("/preferences", h.GetPreferences)
		n.PUT("/preferences", h.UpdatePreferences)

		n.GET("", h.ListFeed)
		n.GET("/unread-count", h.UnreadCount)
		n.POST("/:id/read", h.MarkRead)
		n.POST("/:id/actions", h.ExecuteAction)
		n.DELETE("/:id", h.Hide)
		n.DELETE("", h.Clear)

		n.GET("/jobs", h.ListJobs)
		n.GET("/jobs/:id", h.GetJob)
		n.GET("/stats/queue", h.QueueStats)
		n.GET("/stats/delivery", h.DeliveryStats)
	}
}

// GetPreferences handles GET /notifications/preferences for the acting user
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		h.BadRequest(c, "missing or invalid X-User-ID header")
		return
	}

	prefs, err := h.prefs.Resolve(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// UpdatePreferences handles PUT /notifications/preferences. The user ID
// always comes from the header, never from the body.
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		h.BadRequest(c, "missing or invalid X-User-ID header")
		return
	}

	var prefs notification.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	prefs.UserID = userID

	if err := h.prefs.Update(c.Request.Context(), prefs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// ListFeed handles GET /notifications
func (h *NotificationHandler) ListFeed(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		h.BadRequest(c, "missing or invalid X-User-ID header")
		return
	}
	h.Success(c, h.center.ListForUser(userID))
}

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		h.BadRequest(c, "missing or invalid X-User-ID header")
		return
	}
	h.Success(c, unreadCountResponse{Unread: h.center.UnreadCount(userID)})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.center.MarkRead(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Hide handles DELETE /notifications/:id
func (h *NotificationHandler) Hide(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.center.Hide(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear handles DELETE /notifications. An optional event_type query
// parameter narrows the clear to one event type.
func (h *NotificationHandler) Clear(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		h.BadRequest(c, "missing or invalid X-User-ID header")
		return
	}

	if raw := c.Query("event_type"); raw != "" {
		eventType := notification.EventType(raw)
		if !eventType.IsValid() {
			h.BadRequest(c, "unknown event type")
			return
		}
		h.center.ClearByType(userID, eventType)
	} else {
		h.center.ClearAll(userID)
	}
	h.NoContent(c)
}

type executeActionRequest struct {
	Command string `json:"command" binding:"required"`
}

// ExecuteAction handles POST /notifications/:id/actions
func (h *NotificationHandler) ExecuteAction(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid notification id")
		return
	}

	var req executeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Command handlers run outside the HTTP layer; hand them the
	// request-scoped logger through the context.
	ctx := logger.WithContext(c.Request.Context(), logger.GetGinLogger(c))
	if err := h.center.ExecuteAction(ctx, id, req.Command); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetJob handles GET /notifications/jobs/:id
func (h *NotificationHandler) GetJob(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid job id")
		return
	}

	job, err := h.queue.GetJob(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// ListJobs handles GET /notifications/jobs filtered by order
func (h *NotificationHandler) ListJobs(c *gin.Context) {
	orderID, err := uuid.Parse(c.Query("order_id"))
	if err != nil {
		h.BadRequest(c, "order_id query parameter is required")
		return
	}
	h.Success(c, h.queue.JobsForOrder(orderID))
}

// QueueStats handles GET /notifications/stats/queue
func (h *NotificationHandler) QueueStats(c *gin.Context) {
	h.Success(c, h.queue.GetQueueStats())
}

// DeliveryStats handles GET /notifications/stats/delivery
func (h *NotificationHandler) DeliveryStats(c *gin.Context) {
	h.Success(c, h.queue.GetDeliveryStats())
}
