// Package intent classifies normalized chat text into the branch that
// answers it. Rules are evaluated in order and the first match wins, so a
// message such as "tareas pendientes" is a Tasks request, not Pending.
package intent

import (
	"regexp"
	"strings"
)

// Intent names a reply branch.
type Intent string

const (
	Tasks         Intent = "tasks"
	OpenLeads     Intent = "open_leads"
	Notifications Intent = "notifications"
	Pending       Intent = "pending"
	Fallback      Intent = "fallback"
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// Rule pairs a predicate over normalized text with the intent it selects.
type Rule struct {
	Intent Intent
	Match  func(normalized string) bool
}

var openLeadsPattern = regexp.MustCompile(`\bleads?\b.*\babiert`)

// Rules is the ordered classification table.
var Rules = []Rule{
	{Intent: Tasks, Match: contains("tareas")},
	{Intent: OpenLeads, Match: func(s string) bool {
		return openLeadsPattern.MatchString(s) || strings.Contains(s, "leads abiertos")
	}},
	{Intent: Notifications, Match: contains("notificaciones")},
	{Intent: Pending, Match: contains("pendiente", "asignado")},
}

// Classify returns the intent of the first matching rule, or Fallback.
// The input must already be normalized (lowercase, accents stripped).
func Classify(normalized string) Intent {
	for _, r := range Rules {
		if r.Match(normalized) {
			return r.Intent
		}
	}
	return Fallback
}

func contains(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}
