// Package crm holds the CRM vocabulary shared by the query layer and the
// Bitrix24 adapter: credentials, list requests, and the typed records the
// adapter decodes from untyped result items.
package crm

import "strings"

// Credentials is the per-request authorization pair sent by the CRM widget.
// When either half is empty the transport falls back to the static webhook.
type Credentials struct {
	AuthToken string
	Domain    string
}

// PerRequest reports whether both halves of the per-request pair are present.
func (c Credentials) PerRequest() bool {
	return strings.TrimSpace(c.AuthToken) != "" && strings.TrimSpace(c.Domain) != ""
}

// Filter is sent verbatim as the remote "filter" argument.
type Filter map[string]any

// Select is the ordered list of fields the remote should return.
type Select []string

// Item is one untyped record as returned by the remote.
type Item map[string]any

// ListRequest describes one paginated list query.
type ListRequest struct {
	Method   string
	Filter   Filter
	Select   Select
	PageSize int
	MaxPages int
}

// Remote method names and fixed filter values.
const (
	MethodTaskList    = "tasks.task.list"
	MethodLeadList    = "crm.lead.list"
	MethodDealList    = "crm.deal.list"
	MethodUserGet     = "user.get"
	MethodUserCurrent = "user.current"

	// TaskStatusInProgress is the tasks module code for "in progress".
	TaskStatusInProgress = 2

	// LeadSemanticInProcess is the semantic status of a lead still being worked.
	LeadSemanticInProcess = "PROCESS"
)

// LeadFallbackStatuses are the literal status codes tried, in order, when
// the semantic status filter returns nothing. Some portals never populate
// STATUS_SEMANTIC_ID.
var LeadFallbackStatuses = []string{"NEW", "IN_PROCESS", "PROCESSING"}
