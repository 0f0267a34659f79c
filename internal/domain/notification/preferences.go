package notification

import "github.com/google/uuid"

// EventType classifies the order-lifecycle moments a user can opt in to
type EventType string

const (
	EventOrderConfirmation    EventType = "orderConfirmation"
	EventStatusUpdates        EventType = "statusUpdates"
	EventShippingUpdates      EventType = "shippingUpdates"
	EventDeliveryConfirmation EventType = "deliveryConfirmation"
	EventIssueResolution      EventType = "issueResolution"
)

// IsValid checks if the event type is known
func (e EventType) IsValid() bool {
	switch e {
	case EventOrderConfirmation, EventStatusUpdates, EventShippingUpdates,
		EventDeliveryConfirmation, EventIssueResolution:
		return true
	}
	return false
}

// String returns the string representation of EventType
func (e EventType) String() string {
	return string(e)
}

// Preferences is the per-user record of channel and event-type opt-ins,
// plus the per-channel recipient addresses. It is a read-only input to the
// delivery queue; the user-preferences collaborator owns mutation.
type Preferences struct {
	UserID uuid.UUID `json:"user_id"`

	// Channel flags
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`

	// Per-event-type flags
	OrderConfirmation    bool `json:"order_confirmation"`
	StatusUpdates        bool `json:"status_updates"`
	ShippingUpdates      bool `json:"shipping_updates"`
	DeliveryConfirmation bool `json:"delivery_confirmation"`
	IssueResolution      bool `json:"issue_resolution"`

	// Recipient addresses per channel
	EmailAddress string `json:"email_address"`
	PhoneNumber  string `json:"phone_number"`
	PushToken    string `json:"push_token"`
}

// DefaultPreferences returns an opt-in-everything record delivering to email only
func DefaultPreferences(userID uuid.UUID) Preferences {
	return Preferences{
		UserID:               userID,
		Email:                true,
		OrderConfirmation:    true,
		StatusUpdates:        true,
		ShippingUpdates:      true,
		DeliveryConfirmation: true,
		IssueResolution:      true,
	}
}

// channelEnabled reports whether the channel flag is set
func (p Preferences) channelEnabled(c Channel) bool {
	switch c {
	case ChannelEmail:
		return p.Email
	case ChannelSMS:
		return p.SMS
	case ChannelPush:
		return p.Push
	}
	return false
}

// eventEnabled reports whether the event-type flag is set
func (p Preferences) eventEnabled(e EventType) bool {
	switch e {
	case EventOrderConfirmation:
		return p.OrderConfirmation
	case EventStatusUpdates:
		return p.StatusUpdates
	case EventShippingUpdates:
		return p.ShippingUpdates
	case EventDeliveryConfirmation:
		return p.DeliveryConfirmation
	case EventIssueResolution:
		return p.IssueResolution
	}
	return false
}

// EnabledChannels returns the channels to deliver on for the given event
// type: a channel is included only when both its channel flag and the
// event-type flag are set.
func (p Preferences) EnabledChannels(e EventType) []Channel {
	if !p.eventEnabled(e) {
		return nil
	}
	channels := make([]Channel, 0, 3)
	for _, c := range AllChannels() {
		if p.channelEnabled(c) {
			channels = append(channels, c)
		}
	}
	return channels
}

// Recipient returns the delivery address for the given channel
func (p Preferences) Recipient(c Channel) string {
	switch c {
	case ChannelEmail:
		return p.EmailAddress
	case ChannelSMS:
		return p.PhoneNumber
	case ChannelPush:
		return p.PushToken
	}
	return ""
}
