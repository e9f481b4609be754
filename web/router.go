// Package web exposes a bounded context over HTTP. Commands are posted
// directly, query results and subscription updates are mirrored into
// Redis where browser clients read them.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tasks-lab/services"
)

type Handler struct {
	log           *slog.Logger
	commands      services.ICommandService
	queries       *QueryBridge
	subscriptions *SubscriptionBridge
}

func NewHandler(log *slog.Logger, commands services.ICommandService, queries *QueryBridge, subscriptions *SubscriptionBridge) *Handler {
	return &Handler{log: log, commands: commands, queries: queries, subscriptions: subscriptions}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/command", handler.postCommand)
	r.Post("/query", handler.postQuery)
	r.Route("/subscription", func(r chi.Router) {
		r.Post("/create", handler.createSubscription)
		r.Post("/keep-up", handler.keepUpSubscription)
		r.Post("/cancel", handler.cancelSubscription)
	})
	return r
}
