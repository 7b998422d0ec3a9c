// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// WebhookResponse is the reply shown in the chat widget.
type WebhookResponse struct {
	Respuesta string `json:"respuesta"`
}

// UserResponse is one directory entry.
type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserListResponse is the body of GET /users.
type UserListResponse struct {
	OK    bool           `json:"ok"`
	Users []UserResponse `json:"users"`
}

// WhoAmIResponse is the body of GET /whoami.
type WhoAmIResponse struct {
	OK   bool   `json:"ok"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HealthResponse is the body of the liveness and readiness probes. Checks
// maps each dependency to "ok" or its failure text.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ToHealthResponse folds readiness results into a HealthResponse and
// reports whether every check passed.
func ToHealthResponse(results map[string]error, ready, notReady string) (HealthResponse, bool) {
	resp := HealthResponse{Status: ready, Checks: make(map[string]string, len(results))}
	healthy := true
	for name, err := range results {
		if err != nil {
			resp.Checks[name] = err.Error()
			healthy = false
			continue
		}
		resp.Checks[name] = "ok"
	}
	if !healthy {
		resp.Status = notReady
	}
	return resp, healthy
}

// FailureResponse reports a failed directory call.
type FailureResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// InstallResponse acknowledges the install handshake.
type InstallResponse struct {
	OK       bool   `json:"ok"`
	Domain   string `json:"domain"`
	Protocol string `json:"protocol"`
	Lang     string `json:"lang"`
	AppSID   string `json:"app_sid"`
}

// ServiceInfoResponse is the banner served at the root path.
type ServiceInfoResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Webhook string `json:"webhook"`
}

// ToUserResponse converts a domain user to its directory entry.
func ToUserResponse(u *crm.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.FullName()}
}

// ToUserListResponse converts users to the GET /users body. The list is
// never null.
func ToUserListResponse(users []crm.User) UserListResponse {
	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	return UserListResponse{OK: true, Users: items}
}

// ToWhoAmIResponse converts the current user to the GET /whoami body.
func ToWhoAmIResponse(u *crm.User) WhoAmIResponse {
	return WhoAmIResponse{OK: true, ID: u.ID, Name: u.FullName()}
}

// ToInstallResponse echoes the install handshake.
func ToInstallResponse(q *InstallQuery) InstallResponse {
	return InstallResponse{
		OK:       true,
		Domain:   q.Domain,
		Protocol: q.Protocol,
		Lang:     q.Lang,
		AppSID:   q.AppSID,
	}
}
