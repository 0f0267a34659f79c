package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
)

// OrderService is the slice of the order application layer the HTTP
// handlers depend on
type OrderService interface {
	Create(ctx context.Context, req apporder.CreateOrderRequest) (*apporder.Response, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*apporder.Response, error)
	List(ctx context.Context, filter apporder.ListFilter) ([]apporder.ListItemResponse, int64, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req apporder.UpdateStatusRequest) (*apporder.Response, error)
	AddTracking(ctx context.Context, orderID uuid.UUID, req apporder.AddTrackingRequest) (*apporder.Response, error)
	ReportIssue(ctx context.Context, orderID uuid.UUID, issueType, priority, description string) (uuid.UUID, error)
}

// OrderHandler serves the order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(logger),
		orders:      orders,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.POST("/:id/tracking", h.AddTracking)
		orders.POST("/:id/issues", h.ReportIssue)
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req apporder.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	resp, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /orders with pagination and optional user/status filters
func (h *OrderHandler) List(c *gin.Context) {
	var filter apporder.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rows, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// UpdateStatus handles PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req apporder.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddTracking handles POST /orders/:id/tracking
func (h *OrderHandler) AddTracking(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req apporder.AddTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.AddTracking(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type reportOrderIssueRequest struct {
	Type        string `json:"type" binding:"required"`
	Priority    string `json:"priority"`
	Description string `json:"description" binding:"required"`
}

type reportOrderIssueResponse struct {
	IssueID uuid.UUID `json:"issue_id"`
}

// ReportIssue handles POST /orders/:id/issues
func (h *OrderHandler) ReportIssue(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req reportOrderIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	issueID, err := h.orders.ReportIssue(c.Request.Context(), id, req.Type, req.Priority, req.Description)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reportOrderIssueResponse{IssueID: issueID})
}
