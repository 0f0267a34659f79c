package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

const defaultPushEndpoint = "https://fcm.googleapis.com/fcm/send"

// pushRequest is the JSON body posted to the push gateway
type pushRequest struct {
	To           string           `json:"to"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushAdapter delivers notifications to mobile devices through a
// server-key-authenticated push gateway.
type PushAdapter struct {
	cfg        config.PushChannelConfig
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
}

// NewPushAdapter creates a new push adapter
func NewPushAdapter(cfg config.PushChannelConfig, logger *zap.Logger) *PushAdapter {
	return &PushAdapter{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint: defaultPushEndpoint,
	}
}

// Channel returns the channel this adapter serves
func (a *PushAdapter) Channel() notification.Channel {
	return notification.ChannelPush
}

// Send posts the payload to the push gateway addressed to the device token
func (a *PushAdapter) Send(ctx context.Context, recipient string, payload notification.Payload) notification.DeliveryResult {
	if !a.configured() {
		return notification.DeliveryResult{
			Success: false,
			Error:   shared.NewDomainError(shared.CodeChannelUnavailable, "Push channel is not configured"),
		}
	}

	body, err := json.Marshal(pushRequest{
		To: recipient,
		Notification: pushNotification{
			Title: payload.Subject,
			Body:  payload.Body,
		},
	})
	if err != nil {
		return notification.DeliveryResult{Success: false, Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return notification.DeliveryResult{Success: false, Error: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+a.cfg.ServerKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("push gateway unreachable", zap.Error(err))
		return notification.DeliveryResult{Success: false, Error: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("push gateway returned status %d", resp.StatusCode)
		a.logger.Warn("push delivery rejected",
			zap.String("recipient", recipient),
			zap.Int("status", resp.StatusCode))
		return notification.DeliveryResult{Success: false, Error: err}
	}

	a.logger.Debug("push delivered", zap.String("recipient", recipient))
	return notification.DeliveryResult{Success: true}
}

func (a *PushAdapter) configured() bool {
	return a.cfg.Enabled && a.cfg.ServerKey != ""
}

// Ensure PushAdapter implements ChannelAdapter
var _ notification.ChannelAdapter = (*PushAdapter)(nil)
