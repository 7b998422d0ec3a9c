// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/crm, domain/chat,
// domain/intent). This root package holds the sentinel errors and the typed
// error kinds raised by the CRM transport and the query layer.
package domain
