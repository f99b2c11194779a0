package httpapi

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danceloop/notifykit/pkg/inbox"
	"github.com/danceloop/notifykit/pkg/notify"
)

// API bundles the HTTP handlers over the delivery engine.
type API struct {
	orch   *notify.Orchestrator
	inbox  *inbox.Service
	logger *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithInbox enables the in-app inbox endpoints.
func WithInbox(service *inbox.Service) Option {
	return func(a *API) {
		a.inbox = service
	}
}

// New creates the API over the given orchestrator.
func New(orch *notify.Orchestrator, opts ...Option) *API {
	a := &API{
		orch:   orch,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router builds the chi router with all endpoints mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/notifications", a.handleDeliver)
	r.Get("/stats", a.handleStats)
	r.Get("/events", a.handleEvents)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/broadcast", a.handleBroadcast)
		r.Get("/fallback", a.handleFallbackDrain)

		if a.inbox != nil {
			r.Get("/inbox", a.handleInboxList)
			r.Post("/inbox/read", a.handleInboxMarkAllRead)
			r.Post("/inbox/{itemID}/read", a.handleInboxMarkRead)
		}
	})

	return r
}
