package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
)

// Ping handles GET /ping.
func Ping(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "pong")
}

// Favicon handles GET /favicon.ico with an empty response.
func Favicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Index returns the handler for the root path, a JSON banner naming the
// service.
func Index(serviceName string) http.HandlerFunc {
	body := dto.ServiceInfoResponse{
		Service: serviceName,
		Status:  "ok",
		Webhook: "/webhook",
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
