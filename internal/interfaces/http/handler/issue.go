package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appissue "github.com/storefront/backend/internal/application/issue"
)

// IssueService is the slice of the issue application layer the HTTP
// handlers depend on
type IssueService interface {
	Report(ctx context.Context, req appissue.ReportRequest) (*appissue.Response, error)
	StartInvestigation(ctx context.Context, issueID uuid.UUID) (*appissue.Response, error)
	Resolve(ctx context.Context, issueID uuid.UUID, req appissue.ResolveRequest) (*appissue.Response, error)
	Close(ctx context.Context, issueID uuid.UUID, req appissue.CloseRequest) (*appissue.Response, error)
	GetByID(ctx context.Context, issueID uuid.UUID) (*appissue.Response, error)
	List(ctx context.Context, filter appissue.ListFilter) ([]appissue.Response, int64, error)
}

// IssueHandler serves the issue tracking endpoints
type IssueHandler struct {
	BaseHandler
	issues IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issues IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{
		BaseHandler: NewBaseHandler(logger),
		issues:      issues,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *IssueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	issues := rg.Group("/issues")
	{
		issues.POST("", h.Report)
		issues.GET("", h.List)
		issues.GET("/:id", h.Get)
		issues.POST("/:id/investigate", h.StartInvestigation)
		issues.POST("/:id/resolve", h.Resolve)
		issues.POST("/:id/close", h.Close)
	}
}

// Report handles POST /issues
func (h *IssueHandler) Report(c *gin.Context) {
	var req appissue.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.issues.Report(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /issues/:id
func (h *IssueHandler) Get(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid issue id")
		return
	}

	resp, err := h.issues.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /issues with pagination and an optional status filter
func (h *IssueHandler) List(c *gin.Context) {
	var filter appissue.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rows, total, err := h.issues.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// StartInvestigation handles POST /issues/:id/investigate
func (h *IssueHandler) StartInvestigation(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid issue id")
		return
	}

	resp, err := h.issues.StartInvestigation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resolve handles POST /issues/:id/resolve
func (h *IssueHandler) Resolve(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid issue id")
		return
	}

	var req appissue.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.issues.Resolve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close handles POST /issues/:id/close
func (h *IssueHandler) Close(c *gin.Context) {
	id, err := bindUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid issue id")
		return
	}

	var req appissue.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.issues.Close(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
