package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/chat"
	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

const (
	msgInvalid     = "is invalid"
	msgInvalidHost = "must be a host name, optionally with a port"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under the names clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validateStruct runs the struct tags of s and converts failures into a
// *domain.ValidationError keyed by location.
func validateStruct(s any, location string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[location+"."+fe.Field()] = fieldMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch {
	case strings.Contains(fe.Tag(), "hostname"):
		return msgInvalidHost
	case fe.Tag() == "max":
		return "must be at most " + fe.Param() + " characters"
	case fe.Tag() == "oneof":
		return "must be one of: " + fe.Param()
	default:
		return msgInvalid
	}
}

// UserID is a CRM user id sent either as a JSON string or a JSON number.
// Null and absent decode to "".
type UserID string

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*u = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("user_id must be a string or a number: %w", err)
		}
		*u = UserID(n.String())
		return nil
	}
}

// WebhookRequest is the JSON body the chat widget posts. Credentials may
// arrive in upper or lower case; the upper-case field wins.
type WebhookRequest struct {
	Message     string `json:"message"`
	AuthID      string `json:"AUTH_ID"   validate:"omitempty,max=512"`
	AuthIDLower string `json:"auth_id"   validate:"omitempty,max=512"`
	Domain      string `json:"DOMAIN"    validate:"omitempty,hostname_rfc1123|hostname_port"`
	DomainLower string `json:"domain"    validate:"omitempty,hostname_rfc1123|hostname_port"`
	UserID      UserID `json:"user_id"`
}

// Validate checks field formats. The message itself is never rejected:
// empty or long, the chat service answers it. The body size cap bounds it.
// Returns a *domain.ValidationError if any checks fail.
func (r *WebhookRequest) Validate() error {
	return validateStruct(r, "body")
}

// Credentials returns the per-request credential pair.
func (r *WebhookRequest) Credentials() crm.Credentials {
	return crm.Credentials{
		AuthToken: firstNonEmpty(r.AuthID, r.AuthIDLower),
		Domain:    firstNonEmpty(r.Domain, r.DomainLower),
	}
}

// ToMessage converts the request to a domain chat message.
func (r *WebhookRequest) ToMessage() chat.Message {
	return chat.Message{
		Text:        r.Message,
		UserID:      string(r.UserID),
		Credentials: r.Credentials(),
	}
}

// PortalQuery carries per-request credentials in a query string, as the
// portal appends them to application URLs.
type PortalQuery struct {
	AuthID string `query:"AUTH_ID" validate:"omitempty,max=512"`
	Domain string `query:"DOMAIN"  validate:"omitempty,hostname_rfc1123|hostname_port"`
}

// ParsePortalQuery reads AUTH_ID/auth_id and DOMAIN/domain from q.
func ParsePortalQuery(q url.Values) PortalQuery {
	return PortalQuery{
		AuthID: strings.TrimSpace(firstNonEmpty(q.Get("AUTH_ID"), q.Get("auth_id"))),
		Domain: strings.TrimSpace(firstNonEmpty(q.Get("DOMAIN"), q.Get("domain"))),
	}
}

// Validate checks field formats.
// Returns a *domain.ValidationError if any checks fail.
func (q *PortalQuery) Validate() error {
	return validateStruct(q, "query")
}

// Credentials returns the per-request credential pair.
func (q *PortalQuery) Credentials() crm.Credentials {
	return crm.Credentials{AuthToken: q.AuthID, Domain: q.Domain}
}

// InstallQuery is the handshake the portal sends when the application is
// installed.
type InstallQuery struct {
	Domain   string `query:"DOMAIN"   validate:"omitempty,hostname_rfc1123|hostname_port"`
	Protocol string `query:"PROTOCOL" validate:"omitempty,oneof=0 1"`
	Lang     string `query:"LANG"     validate:"omitempty,alpha,max=8"`
	AppSID   string `query:"APP_SID"  validate:"omitempty,max=256"`
}

// ParseInstallQuery reads the install handshake parameters from q.
func ParseInstallQuery(q url.Values) InstallQuery {
	return InstallQuery{
		Domain:   strings.TrimSpace(q.Get("DOMAIN")),
		Protocol: strings.TrimSpace(q.Get("PROTOCOL")),
		Lang:     strings.TrimSpace(q.Get("LANG")),
		AppSID:   strings.TrimSpace(q.Get("APP_SID")),
	}
}

// Validate checks field formats.
// Returns a *domain.ValidationError if any checks fail.
func (q *InstallQuery) Validate() error {
	return validateStruct(q, "query")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
