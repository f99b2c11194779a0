package notify_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/notify"
)

// staticRegistry serves a fixed set of device addresses per user.
type staticRegistry map[string][]notify.DeviceAddress

func (r staticRegistry) ListAddresses(ctx context.Context, userID string) ([]notify.DeviceAddress, error) {
	return r[userID], nil
}

func (r staticRegistry) PrimaryAddress(ctx context.Context, userID string) (*notify.DeviceAddress, error) {
	addrs := r[userID]
	if len(addrs) == 0 {
		return nil, nil
	}
	return &addrs[0], nil
}

// printSender accepts every notification and prints where it went.
type printSender struct{}

func (printSender) Name() string { return "print" }

func (printSender) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	fmt.Printf("sent %q to %s\n", req.Title, addr.DeviceID)
	return nil
}

// downSender rejects every send.
type downSender struct{}

func (downSender) Name() string { return "down" }

func (downSender) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	return errors.New("gateway unavailable")
}

func ExampleOrchestrator_Deliver() {
	ctx := context.Background()

	registry := staticRegistry{
		"user-1": {{Address: "token-abc", Platform: "ios", DeviceID: "phone", RegisteredAt: time.Now()}},
	}

	orch := notify.NewOrchestrator(registry, printSender{}, kv.NewMemoryStore())
	defer orch.Close()

	delivered, err := orch.Deliver(ctx, notify.Request{
		TargetUserID: "user-1",
		Kind:         notify.KindNewMatch,
		Priority:     notify.PriorityNormal,
		Title:        "You have a new match",
		Body:         "Someone wants to dance with you",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("delivered:", delivered)
	// Output:
	// sent "You have a new match" to phone
	// delivered: true
}

func ExampleOrchestrator_Deliver_broadcast() {
	ctx := context.Background()

	// Critical notifications go to every registered device.
	registry := staticRegistry{
		"user-1": {
			{Address: "token-a", Platform: "ios", DeviceID: "phone", RegisteredAt: time.Now()},
			{Address: "token-b", Platform: "android", DeviceID: "tablet", RegisteredAt: time.Now()},
		},
	}

	orch := notify.NewOrchestrator(registry, printSender{}, kv.NewMemoryStore())
	defer orch.Close()

	delivered, err := orch.Deliver(ctx, notify.Request{
		TargetUserID: "user-1",
		Kind:         notify.KindWorkshopAnnouncement,
		Priority:     notify.PriorityCritical,
		Title:        "Venue changed",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("delivered:", delivered)
	// Unordered output:
	// sent "Venue changed" to phone
	// sent "Venue changed" to tablet
	// delivered: true
}

func ExampleOrchestrator_GetPendingCriticalFallback() {
	ctx := context.Background()

	// No devices and a dead gateway: the critical notification is kept
	// for the user's next session.
	orch := notify.NewOrchestrator(staticRegistry{}, downSender{}, kv.NewMemoryStore())
	defer orch.Close()

	_, err := orch.Deliver(ctx, notify.Request{
		TargetUserID: "user-1",
		Kind:         notify.KindUrgentAnnouncement,
		Priority:     notify.PriorityCritical,
		Title:        "Event cancelled",
	})
	if err != nil {
		log.Fatal(err)
	}

	pending, err := orch.GetPendingCriticalFallback(ctx, "user-1")
	if err != nil {
		log.Fatal(err)
	}

	for _, req := range pending {
		fmt.Println("pending:", req.Title)
	}
	// Output: pending: Event cancelled
}

func ExampleEvents_Subscribe() {
	ctx := context.Background()

	registry := staticRegistry{
		"user-1": {{Address: "token-abc", Platform: "ios", DeviceID: "phone", RegisteredAt: time.Now()}},
	}

	orch := notify.NewOrchestrator(registry, quiet{}, kv.NewMemoryStore())
	defer orch.Close()

	sub := orch.Events().Subscribe()
	defer sub.Close()

	if _, err := orch.Deliver(ctx, notify.Request{
		TargetUserID: "user-1",
		Kind:         notify.KindSessionInvite,
		Priority:     notify.PriorityNormal,
		Title:        "Join tonight's session",
	}); err != nil {
		log.Fatal(err)
	}

	ev := <-sub.C()
	fmt.Println("event:", ev.Type)
	// Output: event: sent
}

// quiet accepts every notification without side effects.
type quiet struct{}

func (quiet) Name() string { return "quiet" }

func (quiet) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	return nil
}
