package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/dto"
	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/handlers"
)

func TestPing(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handlers.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	requireStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "pong" {
		t.Errorf("body = %q, want pong", rec.Body.String())
	}
}

func TestFavicon(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handlers.Favicon(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

	requireStatus(t, rec, http.StatusNoContent)
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestIndex(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handlers.Index("crm-chat-relay")(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ServiceInfoResponse](t, rec)
	if resp.Service != "crm-chat-relay" || resp.Webhook != "/webhook" {
		t.Errorf("response = %+v", resp)
	}
}

func TestInstall(t *testing.T) {
	t.Parallel()

	t.Run("echoes the handshake", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bitrix/install?DOMAIN=tubelite.bitrix24.es&PROTOCOL=1&LANG=es&APP_SID=abc", nil)
		handlers.Install(rec, req)

		requireStatus(t, rec, http.StatusOK)
		want := dto.InstallResponse{OK: true, Domain: "tubelite.bitrix24.es", Protocol: "1", Lang: "es", AppSID: "abc"}
		if resp := decodeJSON[dto.InstallResponse](t, rec); resp != want {
			t.Errorf("response = %+v, want %+v", resp, want)
		}
	})

	t.Run("rejects an unknown protocol", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handlers.Install(rec, httptest.NewRequest(http.MethodGet, "/bitrix/install?PROTOCOL=gopher", nil))

		requireStatus(t, rec, http.StatusBadRequest)
	})
}
