package notification

import (
	"context"

	"github.com/google/uuid"
)

// Channel is a delivery medium for outbound notifications
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// AllChannels returns every supported channel
func AllChannels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush}
}

// IsValid checks if the channel is known
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// String returns the string representation of Channel
func (c Channel) String() string {
	return string(c)
}

// Payload is the channel-independent content of one notification delivery
type Payload struct {
	OrderID   uuid.UUID `json:"order_id"`
	EventType EventType `json:"event_type"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// DeliveryResult is the outcome of one adapter send attempt
type DeliveryResult struct {
	Success bool
	Error   error
}

// ChannelAdapter is the per-channel send primitive. Implementations must be
// safe to retry: a duplicate delivery is tolerable, a double charge is not.
// An adapter that has no credentials configured must return a
// CHANNEL_UNAVAILABLE domain error so the queue fails the job fast instead of
// consuming its retry budget.
type ChannelAdapter interface {
	// Channel returns the channel this adapter serves
	Channel() Channel
	// Send delivers the payload to the recipient address for this channel
	Send(ctx context.Context, recipient string, payload Payload) DeliveryResult
}
