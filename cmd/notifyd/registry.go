package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/notify"
)

// deviceRegistry is a KV-backed notify.DeviceRegistry. The daemon owns
// device registration; in an embedded deployment the host application
// provides its own registry.
type deviceRegistry struct {
	store kv.Store
}

func newDeviceRegistry(store kv.Store) *deviceRegistry {
	return &deviceRegistry{store: store}
}

func (r *deviceRegistry) key(userID string) string {
	return "devices:" + userID
}

func (r *deviceRegistry) ListAddresses(ctx context.Context, userID string) ([]notify.DeviceAddress, error) {
	raw, err := r.store.Get(ctx, r.key(userID))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var addrs []notify.DeviceAddress
	if err := json.Unmarshal(raw, &addrs); err != nil {
		return nil, fmt.Errorf("corrupt device record for %s: %w", userID, err)
	}
	return addrs, nil
}

func (r *deviceRegistry) PrimaryAddress(ctx context.Context, userID string) (*notify.DeviceAddress, error) {
	addrs, err := r.ListAddresses(ctx, userID)
	if err != nil || len(addrs) == 0 {
		return nil, err
	}

	primary := addrs[0]
	for _, a := range addrs[1:] {
		if a.RegisteredAt.After(primary.RegisteredAt) {
			primary = a
		}
	}
	return &primary, nil
}

// Register stores or refreshes a device address. Re-registering a known
// device ID replaces its token and bumps its registration time.
func (r *deviceRegistry) Register(ctx context.Context, userID string, addr notify.DeviceAddress) error {
	addrs, err := r.ListAddresses(ctx, userID)
	if err != nil {
		return err
	}

	addrs = slices.DeleteFunc(addrs, func(a notify.DeviceAddress) bool {
		return a.DeviceID == addr.DeviceID
	})
	if addr.RegisteredAt.IsZero() {
		addr.RegisteredAt = time.Now()
	}
	addrs = append(addrs, addr)

	raw, err := json.Marshal(addrs)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key(userID), raw)
}

// Unregister drops a device. Removing the last device deletes the record.
func (r *deviceRegistry) Unregister(ctx context.Context, userID, deviceID string) error {
	addrs, err := r.ListAddresses(ctx, userID)
	if err != nil {
		return err
	}

	addrs = slices.DeleteFunc(addrs, func(a notify.DeviceAddress) bool {
		return a.DeviceID == deviceID
	})
	if len(addrs) == 0 {
		return r.store.Remove(ctx, r.key(userID))
	}

	raw, err := json.Marshal(addrs)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.key(userID), raw)
}

// mountDeviceRoutes adds device registration endpoints to the router.
func mountDeviceRoutes(r chi.Router, registry *deviceRegistry) {
	r.Post("/users/{userID}/devices", func(w http.ResponseWriter, req *http.Request) {
		var addr notify.DeviceAddress
		if err := json.NewDecoder(req.Body).Decode(&addr); err != nil || addr.Address == "" || addr.DeviceID == "" {
			http.Error(w, "invalid device address", http.StatusBadRequest)
			return
		}
		if err := registry.Register(req.Context(), chi.URLParam(req, "userID"), addr); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/users/{userID}/devices/{deviceID}", func(w http.ResponseWriter, req *http.Request) {
		err := registry.Unregister(req.Context(), chi.URLParam(req, "userID"), chi.URLParam(req, "deviceID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
