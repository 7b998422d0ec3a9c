package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/logging"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"
)

// DirectoryHandler exposes the portal's user directory.
type DirectoryHandler struct {
	directory ports.DirectoryService
}

// NewDirectoryHandler creates a DirectoryHandler.
func NewDirectoryHandler(directory ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListUsers handles GET /users. Credentials come from the query string
// (AUTH_ID/auth_id, DOMAIN/domain) or the static webhook.
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := dto.ParsePortalQuery(r.URL.Query())
	if !validated(w, r, &q) {
		return
	}

	users, err := h.directory.ListUsers(r.Context(), q.Credentials())
	if err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "user directory request failed",
			slog.String("operation", "ListUsers"),
			slog.Any("error", err),
		)
		dto.WriteFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// WhoAmI handles GET /whoami.
func (h *DirectoryHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	q := dto.ParsePortalQuery(r.URL.Query())
	if !validated(w, r, &q) {
		return
	}

	user, err := h.directory.WhoAmI(r.Context(), q.Credentials())
	if err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "current user request failed",
			slog.String("operation", "WhoAmI"),
			slog.Any("error", err),
		)
		dto.WriteFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWhoAmIResponse(user))
}
