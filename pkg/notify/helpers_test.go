package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeRegistry is an in-memory DeviceRegistry test double.
type fakeRegistry struct {
	mu      sync.Mutex
	devices map[string][]DeviceAddress
	err     error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{devices: make(map[string][]DeviceAddress)}
}

func (r *fakeRegistry) add(userID string, addrs ...DeviceAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[userID] = append(r.devices[userID], addrs...)
}

func (r *fakeRegistry) ListAddresses(ctx context.Context, userID string) ([]DeviceAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]DeviceAddress(nil), r.devices[userID]...), nil
}

func (r *fakeRegistry) PrimaryAddress(ctx context.Context, userID string) (*DeviceAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	addrs := r.devices[userID]
	if len(addrs) == 0 {
		return nil, nil
	}

	primary := addrs[0]
	for _, a := range addrs[1:] {
		if a.RegisteredAt.After(primary.RegisteredAt) {
			primary = a
		}
	}
	return &primary, nil
}

// fakeSender is a ChannelSender test double. Outcomes are controlled per
// device address; unlisted addresses succeed.
type fakeSender struct {
	mu       sync.Mutex
	failing  map[string]error
	calls    []sentCall
	delay    time.Duration
	failNext int // fail this many calls regardless of address
}

type sentCall struct {
	addr DeviceAddress
	req  Request
}

func newFakeSender() *fakeSender {
	return &fakeSender{failing: make(map[string]error)}
}

func (s *fakeSender) failAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[address] = errors.New("gateway rejected")
}

func (s *fakeSender) failAll(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) Send(ctx context.Context, addr DeviceAddress, req Request) error {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentCall{addr: addr, req: req})

	if s.failNext != 0 {
		if s.failNext > 0 {
			s.failNext--
		}
		return errors.New("gateway unavailable")
	}
	if err, ok := s.failing[addr.Address]; ok {
		return err
	}
	return nil
}

// alwaysFailSender fails every send.
func alwaysFailSender() *fakeSender {
	s := newFakeSender()
	s.failNext = -1
	return s
}

func testRequest(userID string, kind Kind, priority Priority) Request {
	return Request{
		TargetUserID: userID,
		Kind:         kind,
		Priority:     priority,
		Title:        "title",
		Body:         "body",
	}
}
