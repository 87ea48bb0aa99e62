package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/http/handlers"
	mw "github.com/Ltancreti7/swaprunn-dispatch/internal/http/middleware"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(logger logx.Logger, h *handlers.Handlers, del *handlers.DeliveryHandler, fd *handlers.FeedHandler, pr *handlers.PresenceHandler, nt *handlers.NotificationHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.Observability(logger))

	r.Route("/deliveries", func(r chi.Router) {
		// Long-poll free endpoints share the base timeout.
		r.Use(middleware.Timeout(5 * time.Second))

		r.Post("/", del.Create)
		r.Post("/{id}/claim", del.Claim)
		r.Post("/{id}/decline", del.Decline)
		r.Post("/{id}/start", del.Start)
		r.Post("/{id}/complete", del.Complete)
		r.Post("/{id}/schedule", del.Schedule)
		r.Post("/{id}/cancel", del.Cancel)
		r.Post("/{id}/typing", pr.Touch)
	})

	r.Get("/deliveries/{id}/typing/stream", pr.Stream)

	// The SSE stream stays open indefinitely, so no timeout middleware here.
	r.Get("/drivers/{id}/feed", fd.Stream)
	r.With(middleware.Timeout(5*time.Second)).Get("/drivers/{id}/views", fd.Views)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))

		r.Get("/users/{id}/notifications", nt.List)
		r.Post("/notifications/{id}/read", nt.MarkRead)
	})

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
