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

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

type stubPreferences struct {
	prefs   notification.Preferences
	saved   *notification.Preferences
	getErr  error
	saveErr error
}

func (s *stubPreferences) Resolve(_ context.Context, _ uuid.UUID) (notification.Preferences, error) {
	return s.prefs, s.getErr
}

func (s *stubPreferences) Update(_ context.Context, prefs notification.Preferences) error {
	s.saved = &prefs
	return s.saveErr
}

type stubCenter struct {
	feed      []appnotification.InAppNotification
	unread    int
	markedID  uuid.UUID
	hiddenID  uuid.UUID
	clearedBy *notification.EventType
	cleared   bool
	actionErr error
}

func (s *stubCenter) ListForUser(_ uuid.UUID) []appnotification.InAppNotification { return s.feed }
func (s *stubCenter) UnreadCount(_ uuid.UUID) int                                 { return s.unread }
func (s *stubCenter) MarkRead(id uuid.UUID) error                                 { s.markedID = id; return nil }
func (s *stubCenter) Hide(id uuid.UUID) error                                     { s.hiddenID = id; return nil }
func (s *stubCenter) ClearAll(_ uuid.UUID)                                        { s.cleared = true }
func (s *stubCenter) ClearByType(_ uuid.UUID, e notification.EventType)           { s.clearedBy = &e }
func (s *stubCenter) ExecuteAction(_ context.Context, _ uuid.UUID, _ string) error {
	return s.actionErr
}

type stubQueue struct {
	job        notification.Job
	jobErr     error
	orderJobs  []notification.Job
	queueStats appnotification.QueueStats
	delivery   appnotification.DeliveryStats
}

func (s *stubQueue) GetJob(_ uuid.UUID) (notification.Job, error)    { return s.job, s.jobErr }
func (s *stubQueue) JobsForOrder(_ uuid.UUID) []notification.Job     { return s.orderJobs }
func (s *stubQueue) GetQueueStats() appnotification.QueueStats       { return s.queueStats }
func (s *stubQueue) GetDeliveryStats() appnotification.DeliveryStats { return s.delivery }

func newNotificationTestServer(prefs *stubPreferences, center *stubCenter, queue *stubQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNotificationHandler(prefs, center, queue, zap.NewNop())
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func TestNotificationHandler_PreferencesRequireUserHeader(t *testing.T) {
	r := newNotificationTestServer(&stubPreferences{}, &stubCenter{}, &stubQueue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/preferences", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_GetPreferences(t *testing.T) {
	userID := uuid.New()
	prefs := &stubPreferences{prefs: notification.DefaultPreferences(userID)}
	r := newNotificationTestServer(prefs, &stubCenter{}, &stubQueue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/preferences", nil)
	req.Header.Set("X-User-ID", userID.String())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestNotificationHandler_UpdatePreferencesForcesUserID(t *testing.T) {
	userID := uuid.New()
	prefs := &stubPreferences{}
	r := newNotificationTestServer(prefs, &stubCenter{}, &stubQueue{})

	body := bytes.NewBufferString(`{"user_id":"` + uuid.NewString() + `","email":true,"email_address":"buyer@example.com"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/preferences", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, prefs.saved)
	assert.Equal(t, userID, prefs.saved.UserID)
	assert.Equal(t, "buyer@example.com", prefs.saved.EmailAddress)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	center := &stubCenter{unread: 3}
	r := newNotificationTestServer(&stubPreferences{}, center, &stubQueue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":3`)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	center := &stubCenter{}
	r := newNotificationTestServer(&stubPreferences{}, center, &stubQueue{})

	id := uuid.New()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id.String()+"/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, id, center.markedID)
}

func TestNotificationHandler_ClearByEventType(t *testing.T) {
	center := &stubCenter{}
	r := newNotificationTestServer(&stubPreferences{}, center, &stubQueue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications?event_type=statusUpdates", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, center.clearedBy)
	assert.Equal(t, notification.EventStatusUpdates, *center.clearedBy)
	assert.False(t, center.cleared)
}

func TestNotificationHandler_ClearRejectsUnknownEventType(t *testing.T) {
	r := newNotificationTestServer(&stubPreferences{}, &stubCenter{}, &stubQueue{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications?event_type=bogus", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_GetJobNotFound(t *testing.T) {
	queue := &stubQueue{jobErr: shared.ErrNotFound}
	r := newNotificationTestServer(&stubPreferences{}, &stubCenter{}, queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/jobs/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_QueueStats(t *testing.T) {
	queue := &stubQueue{queueStats: appnotification.QueueStats{Pending: 2, Sent: 5}}
	r := newNotificationTestServer(&stubPreferences{}, &stubCenter{}, queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stats/queue", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":2`)
}
