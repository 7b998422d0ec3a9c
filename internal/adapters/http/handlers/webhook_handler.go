package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// WebhookHandler receives chat messages from the CRM widget.
type WebhookHandler struct {
	chat ports.ChatService
}

// NewWebhookHandler creates a WebhookHandler over the chat service.
func NewWebhookHandler(chat ports.ChatService) *WebhookHandler {
	return &WebhookHandler{chat: chat}
}

// Receive handles POST /webhook. Every well-formed request is answered
// with 200 and a reply text, including CRM and model failures. Malformed
// JSON and invalid credential formats are rejected with 400.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req dto.WebhookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply := h.chat.Reply(r.Context(), req.ToMessage())
	writeJSON(w, http.StatusOK, dto.WebhookResponse{Respuesta: reply})
}

// Status handles GET /webhook so the portal can probe the endpoint.
func (h *WebhookHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Webhook activo")
}
