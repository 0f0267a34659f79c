package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPreferences_EnabledChannels(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name  string
		prefs Preferences
		event EventType
		want  []Channel
	}{
		{
			name:  "defaults deliver shipping updates over email only",
			prefs: DefaultPreferences(userID),
			event: EventShippingUpdates,
			want:  []Channel{ChannelEmail},
		},
		{
			name: "all channels on for an enabled event",
			prefs: Preferences{
				UserID: userID, Email: true, SMS: true, Push: true,
				StatusUpdates: true,
			},
			event: EventStatusUpdates,
			want:  []Channel{ChannelEmail, ChannelSMS, ChannelPush},
		},
		{
			name: "event flag off suppresses every channel",
			prefs: Preferences{
				UserID: userID, Email: true, SMS: true, Push: true,
				StatusUpdates: false,
			},
			event: EventStatusUpdates,
			want:  nil,
		},
		{
			name: "channel flag off suppresses that channel",
			prefs: Preferences{
				UserID: userID, Email: false, SMS: true,
				OrderConfirmation: true,
			},
			event: EventOrderConfirmation,
			want:  []Channel{ChannelSMS},
		},
		{
			name: "only matching event flag counts",
			prefs: Preferences{
				UserID: userID, Push: true,
				ShippingUpdates: true, DeliveryConfirmation: false,
			},
			event: EventDeliveryConfirmation,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prefs.EnabledChannels(tt.event))
		})
	}
}

func TestPreferences_Recipient(t *testing.T) {
	prefs := Preferences{
		EmailAddress: "buyer@example.com",
		PhoneNumber:  "+911234567890",
		PushToken:    "tok-abc",
	}

	assert.Equal(t, "buyer@example.com", prefs.Recipient(ChannelEmail))
	assert.Equal(t, "+911234567890", prefs.Recipient(ChannelSMS))
	assert.Equal(t, "tok-abc", prefs.Recipient(ChannelPush))
	assert.Equal(t, "", prefs.Recipient(Channel("fax")))
}

func TestEventType_IsValid(t *testing.T) {
	for _, e := range []EventType{
		EventOrderConfirmation, EventStatusUpdates, EventShippingUpdates,
		EventDeliveryConfirmation, EventIssueResolution,
	} {
		assert.True(t, e.IsValid(), e.String())
	}
	assert.False(t, EventType("marketing").IsValid())
}
