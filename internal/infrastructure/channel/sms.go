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

// smsRequest is the JSON body posted to the SMS gateway
type smsRequest struct {
	To       string `json:"to"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

// SMSAdapter delivers notifications through an HTTP SMS gateway
type SMSAdapter struct {
	cfg        config.SMSChannelConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewSMSAdapter creates a new SMS adapter
func NewSMSAdapter(cfg config.SMSChannelConfig, logger *zap.Logger) *SMSAdapter {
	return &SMSAdapter{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Channel returns the channel this adapter serves
func (a *SMSAdapter) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send posts the message body to the configured gateway
func (a *SMSAdapter) Send(ctx context.Context, recipient string, payload notification.Payload) notification.DeliveryResult {
	if !a.configured() {
		return notification.DeliveryResult{
			Success: false,
			Error:   shared.NewDomainError(shared.CodeChannelUnavailable, "SMS channel is not configured"),
		}
	}

	body, err := json.Marshal(smsRequest{
		To:       recipient,
		SenderID: a.cfg.SenderID,
		Message:  payload.Body,
	})
	if err != nil {
		return notification.DeliveryResult{Success: false, Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return notification.DeliveryResult{Success: false, Error: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("sms gateway unreachable", zap.Error(err))
		return notification.DeliveryResult{Success: false, Error: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
		a.logger.Warn("sms delivery rejected",
			zap.String("recipient", recipient),
			zap.Int("status", resp.StatusCode))
		return notification.DeliveryResult{Success: false, Error: err}
	}

	a.logger.Debug("sms delivered", zap.String("recipient", recipient))
	return notification.DeliveryResult{Success: true}
}

func (a *SMSAdapter) configured() bool {
	return a.cfg.Enabled && a.cfg.GatewayURL != "" && a.cfg.APIKey != ""
}

// Ensure SMSAdapter implements ChannelAdapter
var _ notification.ChannelAdapter = (*SMSAdapter)(nil)
