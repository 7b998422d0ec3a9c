// Package chat defines the inbound chat message handled by the relay.
package chat

import (
	"strings"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// Message is one free-text message posted by the CRM chat widget.
type Message struct {
	Text        string
	UserID      string
	Credentials crm.Credentials
}

// Empty reports whether the message has no text after trimming.
func (m Message) Empty() bool {
	return strings.TrimSpace(m.Text) == ""
}
