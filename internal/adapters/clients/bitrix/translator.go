package bitrix

import (
	"encoding/json"
	"strconv"

	"github.com/jsamuelsen11/crm-chat-relay/internal/domain/crm"
)

// Select lists sent with each list method.
var (
	taskSelect = crm.Select{"ID", "TITLE", "STATUS", "DEADLINE", "RESPONSIBLE_ID"}
	leadSelect = crm.Select{"ID", "TITLE", "STATUS_ID", "ASSIGNED_BY_ID", "DATE_CREATE"}
	dealSelect = crm.Select{"ID", "TITLE", "STATUS_ID", "ASSIGNED_BY_ID"}
)

// The tasks module answers in camelCase and may wrap each entry as
// {"task": {...}}; the crm module answers in UPPER_CASE. Every decoder
// tries the known spellings in order and leaves absent fields empty.

func toTask(item crm.Item) crm.Task {
	if inner, ok := item["task"].(map[string]any); ok {
		item = inner
	}
	return crm.Task{
		ID:            field(item, "id", "ID"),
		Title:         field(item, "title", "TITLE"),
		Status:        field(item, "status", "STATUS"),
		Deadline:      field(item, "deadline", "DEADLINE"),
		ResponsibleID: field(item, "responsibleId", "RESPONSIBLE_ID"),
	}
}

func toLead(item crm.Item) crm.Lead {
	return crm.Lead{
		ID:           field(item, "ID", "id"),
		Title:        field(item, "TITLE", "title"),
		StatusID:     field(item, "STATUS_ID", "statusId"),
		AssignedByID: field(item, "ASSIGNED_BY_ID", "assignedById"),
		DateCreate:   field(item, "DATE_CREATE", "dateCreate"),
	}
}

func toDeal(item crm.Item) crm.Deal {
	return crm.Deal{
		ID:           field(item, "ID", "id"),
		Title:        field(item, "TITLE", "title"),
		StatusID:     field(item, "STATUS_ID", "statusId"),
		AssignedByID: field(item, "ASSIGNED_BY_ID", "assignedById"),
	}
}

func toUser(item crm.Item) crm.User {
	return crm.User{
		ID:       field(item, "ID", "id"),
		Name:     field(item, "NAME", "name"),
		LastName: field(item, "LAST_NAME", "lastName"),
	}
}

func toTasks(items []crm.Item) []crm.Task {
	out := make([]crm.Task, len(items))
	for i, it := range items {
		out[i] = toTask(it)
	}
	return out
}

func toLeads(items []crm.Item) []crm.Lead {
	out := make([]crm.Lead, len(items))
	for i, it := range items {
		out[i] = toLead(it)
	}
	return out
}

func toDeals(items []crm.Item) []crm.Deal {
	out := make([]crm.Deal, len(items))
	for i, it := range items {
		out[i] = toDeal(it)
	}
	return out
}

// field returns the first non-empty value among keys, rendered as text.
func field(item crm.Item, keys ...string) string {
	for _, k := range keys {
		if s := text(item[k]); s != "" {
			return s
		}
	}
	return ""
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
