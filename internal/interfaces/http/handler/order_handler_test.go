package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

type stubOrderService struct {
	createResp *apporder.Response
	createErr  error
	getResp    *apporder.Response
	getErr     error
	listRows   []apporder.ListItemResponse
	listTotal  int64
	updateResp *apporder.Response
	updateErr  error

	lastStatusReq apporder.UpdateStatusRequest
}

func (s *stubOrderService) Create(_ context.Context, _ apporder.CreateOrderRequest) (*apporder.Response, error) {
	return s.createResp, s.createErr
}

func (s *stubOrderService) GetByID(_ context.Context, _ uuid.UUID) (*apporder.Response, error) {
	return s.getResp, s.getErr
}

func (s *stubOrderService) List(_ context.Context, _ apporder.ListFilter) ([]apporder.ListItemResponse, int64, error) {
	return s.listRows, s.listTotal, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ uuid.UUID, req apporder.UpdateStatusRequest) (*apporder.Response, error) {
	s.lastStatusReq = req
	return s.updateResp, s.updateErr
}

func (s *stubOrderService) AddTracking(_ context.Context, _ uuid.UUID, _ apporder.AddTrackingRequest) (*apporder.Response, error) {
	return s.updateResp, s.updateErr
}

func (s *stubOrderService) ReportIssue(_ context.Context, _ uuid.UUID, _, _, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func newOrderTestServer(svc OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOrderHandler(svc, zap.NewNop())
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOrderHandler_GetNotFound(t *testing.T) {
	svc := &stubOrderService{getErr: shared.ErrNotFound}
	r := newOrderTestServer(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestOrderHandler_GetInvalidID(t *testing.T) {
	r := newOrderTestServer(&stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{
		updateResp: &apporder.Response{ID: orderID, Status: "CONFIRMED"},
	}
	r := newOrderTestServer(svc)

	body := bytes.NewBufferString(`{"status":"CONFIRMED"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", svc.lastStatusReq.Status)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestOrderHandler_UpdateStatusInvalidTransition(t *testing.T) {
	svc := &stubOrderService{
		updateErr: shared.NewInvalidTransitionError("cannot move from DELIVERED to PENDING"),
	}
	r := newOrderTestServer(svc)

	body := bytes.NewBufferString(`{"status":"PENDING"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidTransition, resp.Error.Code)
}

func TestOrderHandler_UpdateStatusConcurrencyConflict(t *testing.T) {
	svc := &stubOrderService{updateErr: shared.ErrConcurrencyConflict}
	r := newOrderTestServer(svc)

	body := bytes.NewBufferString(`{"status":"CONFIRMED"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderHandler_ListIncludesPaginationMeta(t *testing.T) {
	svc := &stubOrderService{
		listRows:  []apporder.ListItemResponse{{ID: uuid.New(), Status: "PENDING"}},
		listTotal: 41,
	}
	r := newOrderTestServer(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=2&page_size=20", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestOrderHandler_CreateBadBody(t *testing.T) {
	r := newOrderTestServer(&stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
