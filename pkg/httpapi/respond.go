package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danceloop/notifykit/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.LogAttrs(r.Context(), slog.LevelError, "failed to encode response", logger.Error(err))
	}
}

func (a *API) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	a.respondJSON(w, r, status, errorResponse{Error: err.Error()})
}
