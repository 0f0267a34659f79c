package channel

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// EmailAdapter delivers notifications over SMTP
type EmailAdapter struct {
	cfg    config.EmailChannelConfig
	logger *zap.Logger

	// send is swappable for tests; defaults to smtp.SendMail
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailAdapter creates a new email adapter
func NewEmailAdapter(cfg config.EmailChannelConfig, logger *zap.Logger) *EmailAdapter {
	return &EmailAdapter{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// Channel returns the channel this adapter serves
func (a *EmailAdapter) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send delivers the payload as a plain-text email
func (a *EmailAdapter) Send(ctx context.Context, recipient string, payload notification.Payload) notification.DeliveryResult {
	if !a.configured() {
		return notification.DeliveryResult{
			Success: false,
			Error:   shared.NewDomainError(shared.CodeChannelUnavailable, "Email channel is not configured"),
		}
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		a.cfg.FromAddress, recipient, payload.Subject, payload.Body))

	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.Host)

	if err := a.send(addr, auth, a.cfg.FromAddress, []string{recipient}, msg); err != nil {
		a.logger.Warn("email delivery failed",
			zap.String("recipient", recipient),
			zap.Error(err))
		return notification.DeliveryResult{Success: false, Error: err}
	}

	a.logger.Debug("email delivered",
		zap.String("recipient", recipient),
		zap.String("subject", payload.Subject))
	return notification.DeliveryResult{Success: true}
}

func (a *EmailAdapter) configured() bool {
	return a.cfg.Enabled && a.cfg.Host != "" && a.cfg.FromAddress != ""
}

// Ensure EmailAdapter implements ChannelAdapter
var _ notification.ChannelAdapter = (*EmailAdapter)(nil)
