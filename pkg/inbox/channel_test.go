package inbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceloop/notifykit/pkg/inbox"
	"github.com/danceloop/notifykit/pkg/notify"
)

func TestChannel_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := inbox.NewService(inbox.NewMemoryStorage())
	ch := inbox.NewChannel(svc)
	assert.Equal(t, "inbox", ch.Name())

	req := notify.Request{
		ID:           "n1",
		TargetUserID: "user-1",
		Kind:         notify.KindUrgentAnnouncement,
		Priority:     notify.PriorityCritical,
		Title:        "Event cancelled",
		Body:         "Tonight's event is cancelled",
		Payload:      map[string]any{"event_id": "e9"},
		CreatedAt:    time.Now(),
	}

	// The device address is irrelevant to the inbox.
	require.NoError(t, ch.Send(ctx, notify.DeviceAddress{}, req))

	item, err := svc.Get(ctx, "user-1", "n1")
	require.NoError(t, err)
	assert.Equal(t, notify.KindUrgentAnnouncement, item.Kind)
	assert.Equal(t, "Event cancelled", item.Title)
	assert.Equal(t, "e9", item.Payload["event_id"])
	assert.False(t, item.Read)

	count, err := svc.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChannel_SendSameIDTwice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := inbox.NewService(inbox.NewMemoryStorage())
	ch := inbox.NewChannel(svc)

	req := notify.Request{
		ID:           "n1",
		TargetUserID: "user-1",
		Kind:         notify.KindSessionReminder,
		Priority:     notify.PriorityHigh,
		Title:        "Session tonight",
		Body:         "Practice at 19:00",
		CreatedAt:    time.Now(),
	}

	// A redelivered notification must not pile up in the list.
	require.NoError(t, ch.Send(ctx, notify.DeviceAddress{}, req))
	require.NoError(t, ch.Send(ctx, notify.DeviceAddress{}, req))

	items, err := svc.List(ctx, "user-1", inbox.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	count, err := svc.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
