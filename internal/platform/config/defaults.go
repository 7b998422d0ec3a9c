package config

const (
	defaultServerPort = 8080

	defaultPageSize     = 50
	defaultDisplayLimit = 15

	defaultRateLimitBurst = 4

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":                 "0.0.0.0",
		"server.port":                 defaultServerPort,
		"server.read_timeout":         "5s",
		"server.write_timeout":        "60s",
		"server.idle_timeout":         "120s",
		"server.cors.allowed_origins": []string{},

		"log.level":  "info",
		"log.format": "json",

		"crm.webhook_url":                     "",
		"crm.timeout":                         "20s",
		"crm.page_size":                       defaultPageSize,
		"crm.rate_limit.requests_per_second":  2.0,
		"crm.rate_limit.burst":                defaultRateLimitBurst,
		"crm.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"crm.circuit_breaker.timeout":         "30s",
		"crm.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"llm.api_key": "",
		"llm.model":   "gemini-1.5-flash",
		"llm.timeout": "30s",

		"chat.display_limit": defaultDisplayLimit,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "crm-chat-relay",
	}
}

// legacyEnv maps the variable names the widget was first deployed with onto
// config keys. APP_ prefixed variables still take precedence.
var legacyEnv = map[string]string{
	"BITRIX_WEBHOOK": "crm.webhook_url",
	"GEMINI_KEY":     "llm.api_key",
	"PORT":           "server.port",
}
