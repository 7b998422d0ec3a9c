package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/logging"
)

// Install handles GET and POST /bitrix/install, the handshake the portal
// performs when the application is installed. It logs the portal and
// echoes the parameters back.
func Install(w http.ResponseWriter, r *http.Request) {
	q := dto.ParseInstallQuery(r.URL.Query())
	if !validated(w, r, &q) {
		return
	}

	logging.FromContext(r.Context()).InfoContext(r.Context(), "application installed",
		slog.String("domain", q.Domain),
		slog.String("protocol", q.Protocol),
		slog.String("lang", q.Lang),
		slog.String("app_sid", q.AppSID),
	)

	writeJSON(w, http.StatusOK, dto.ToInstallResponse(&q))
}
