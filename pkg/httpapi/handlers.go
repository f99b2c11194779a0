package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danceloop/notifykit/pkg/inbox"
	"github.com/danceloop/notifykit/pkg/logger"
	"github.com/danceloop/notifykit/pkg/notify"
)

var errInvalidBody = errors.New("invalid request body")

type deliverResponse struct {
	ID        string `json:"id"`
	Delivered bool   `json:"delivered"`
}

func (a *API) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req notify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, http.StatusBadRequest, errInvalidBody)
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	delivered, err := a.orch.Deliver(r.Context(), req)
	if err != nil {
		a.respondError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	status := http.StatusOK
	if !delivered {
		// The engine keeps working on it: queued for retry or parked in
		// the critical fallback.
		status = http.StatusAccepted
	}
	a.respondJSON(w, r, status, deliverResponse{ID: req.ID, Delivered: delivered})
}

type broadcastRequest struct {
	Kind     notify.Kind     `json:"kind"`
	Priority notify.Priority `json:"priority"`
	Title    string          `json:"title"`
	Body     string          `json:"body,omitempty"`
	Payload  map[string]any  `json:"payload,omitempty"`
}

func (a *API) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.respondError(w, r, http.StatusBadRequest, errInvalidBody)
		return
	}

	req := notify.Request{
		TargetUserID: userID,
		Kind:         body.Kind,
		Priority:     body.Priority,
		Title:        body.Title,
		Body:         body.Body,
		Payload:      body.Payload,
	}
	if err := req.Validate(); err != nil {
		a.respondError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	res := a.orch.BroadcastToAllDevices(r.Context(), userID, req)
	a.respondJSON(w, r, http.StatusOK, res)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.orch.GetStats(r.Context())
	if err != nil {
		a.logger.LogAttrs(r.Context(), slog.LevelError, "failed to collect stats", logger.Error(err))
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, r, http.StatusOK, stats)
}

type fallbackResponse struct {
	Notifications []notify.Request `json:"notifications"`
}

func (a *API) handleFallbackDrain(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	pending, err := a.orch.GetPendingCriticalFallback(r.Context(), userID)
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if pending == nil {
		pending = []notify.Request{}
	}
	a.respondJSON(w, r, http.StatusOK, fallbackResponse{Notifications: pending})
}

type inboxResponse struct {
	Items  []inbox.Item `json:"items"`
	Unread int          `json:"unread"`
}

func (a *API) handleInboxList(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	opts := inbox.ListOptions{
		OnlyUnread: r.URL.Query().Get("unread") == "true",
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		opts.Offset = offset
	}

	items, err := a.inbox.List(r.Context(), userID, opts)
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	unread, err := a.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []inbox.Item{}
	}
	a.respondJSON(w, r, http.StatusOK, inboxResponse{Items: items, Unread: unread})
}

func (a *API) handleInboxMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemID := chi.URLParam(r, "itemID")

	if err := a.inbox.MarkRead(r.Context(), userID, itemID); err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleInboxMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := a.inbox.MarkAllRead(r.Context(), userID); err != nil {
		a.respondError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
