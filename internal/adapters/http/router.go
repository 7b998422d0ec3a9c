// Package http is the inbound HTTP adapter: routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/handlers"
)

const corsMaxAge = 300

// RouterOptions carries the non-handler inputs of NewRouter.
type RouterOptions struct {
	ServiceName string

	// AllowedOrigins enables CORS for the listed origins. Empty disables
	// CORS entirely, so browsers on other origins are refused.
	AllowedOrigins []string
}

// NewRouter registers every relay route. Middleware runs globally in the
// order given, CORS last so preflight requests are still logged and traced.
func NewRouter(
	webhook *handlers.WebhookHandler,
	directory *handlers.DirectoryHandler,
	health *handlers.HealthHandler,
	opts RouterOptions,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         corsMaxAge,
		}))
	}

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	index := handlers.Index(opts.ServiceName)
	r.Get("/", index)
	r.Post("/", index)
	r.Get("/ping", handlers.Ping)
	r.Get("/favicon.ico", handlers.Favicon)

	// Chat entry point.
	r.Post("/webhook", webhook.Receive)
	r.Get("/webhook", webhook.Status)

	// Portal directory.
	r.Get("/users", directory.ListUsers)
	r.Get("/whoami", directory.WhoAmI)

	r.Get("/bitrix/install", handlers.Install)
	r.Post("/bitrix/install", handlers.Install)

	return r
}
