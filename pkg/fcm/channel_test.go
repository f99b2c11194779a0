package fcm

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceloop/notifykit/pkg/notify"
)

type fakeMessagingClient struct {
	lastMessage *messaging.Message
	err         error
	delay       time.Duration
}

func (f *fakeMessagingClient) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	f.lastMessage = message
	if f.err != nil {
		return "", f.err
	}
	return "projects/p/messages/m1", nil
}

func testAddr() notify.DeviceAddress {
	return notify.DeviceAddress{Address: "fcm-token-1", Platform: "android", DeviceID: "d1"}
}

func TestChannel_Send(t *testing.T) {
	t.Parallel()

	client := &fakeMessagingClient{}
	ch := NewWithClient(client)
	assert.Equal(t, "fcm", ch.Name())

	req := notify.Request{
		ID:           "n1",
		TargetUserID: "user-1",
		Kind:         notify.KindNewMatch,
		Priority:     notify.PriorityNormal,
		Title:        "New match",
		Body:         "Someone matched with you",
		Payload:      map[string]any{"match_id": "m7", "score": 3},
	}

	require.NoError(t, ch.Send(context.Background(), testAddr(), req))

	msg := client.lastMessage
	require.NotNil(t, msg)
	assert.Equal(t, "fcm-token-1", msg.Token)
	assert.Equal(t, "New match", msg.Notification.Title)
	assert.Equal(t, "Someone matched with you", msg.Notification.Body)
	assert.Equal(t, "n1", msg.Data["notification_id"])
	assert.Equal(t, "new_match", msg.Data["kind"])
	assert.Equal(t, "m7", msg.Data["match_id"])
	assert.Equal(t, "3", msg.Data["score"])
	assert.Equal(t, "normal", msg.Android.Priority)
	assert.Equal(t, "5", msg.APNS.Headers["apns-priority"])
}

func TestChannel_Send_HighPriorityHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority        notify.Priority
		androidPriority string
		apnsPriority    string
	}{
		{notify.PriorityLow, "normal", "5"},
		{notify.PriorityNormal, "normal", "5"},
		{notify.PriorityHigh, "high", "10"},
		{notify.PriorityCritical, "high", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.priority.String(), func(t *testing.T) {
			t.Parallel()

			client := &fakeMessagingClient{}
			ch := NewWithClient(client)

			req := notify.Request{
				ID:           "n1",
				TargetUserID: "user-1",
				Kind:         notify.KindUrgentAnnouncement,
				Priority:     tt.priority,
				Title:        "t",
			}
			require.NoError(t, ch.Send(context.Background(), testAddr(), req))
			assert.Equal(t, tt.androidPriority, client.lastMessage.Android.Priority)
			assert.Equal(t, tt.apnsPriority, client.lastMessage.APNS.Headers["apns-priority"])
		})
	}
}

func TestChannel_Send_GatewayRejection(t *testing.T) {
	t.Parallel()

	rejection := errors.New("registration token is not registered")
	ch := NewWithClient(&fakeMessagingClient{err: rejection})

	err := ch.Send(context.Background(), testAddr(), notify.Request{
		ID:           "n1",
		TargetUserID: "user-1",
		Kind:         notify.KindNewMatch,
		Priority:     notify.PriorityNormal,
		Title:        "t",
	})
	assert.ErrorIs(t, err, rejection)
}

func TestChannel_Send_Timeout(t *testing.T) {
	t.Parallel()

	client := &fakeMessagingClient{delay: 200 * time.Millisecond}
	ch := NewWithClient(client, WithSendTimeout(20*time.Millisecond))

	err := ch.Send(context.Background(), testAddr(), notify.Request{
		ID:           "n1",
		TargetUserID: "user-1",
		Kind:         notify.KindNewMatch,
		Priority:     notify.PriorityNormal,
		Title:        "t",
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = New(context.Background(), Config{CredentialsFile: "/nonexistent/creds.json"})
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}
