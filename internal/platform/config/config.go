// Package config provides configuration loading and validation for the relay.
// Configuration is loaded in layers: defaults -> base.yaml -> {profile}.yaml ->
// legacy env names -> APP_ prefixed env vars.
package config

import "time"

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	CRM       CRMConfig       `koanf:"crm"`
	LLM       LLMConfig       `koanf:"llm"`
	Chat      ChatConfig      `koanf:"chat"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	CORS         CORSConfig    `koanf:"cors"`
}

// CORSConfig lists the origins allowed to call the relay from a browser.
// The CRM portal that embeds the chat widget is normally the only entry.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CRMConfig holds settings for the Bitrix24 REST client.
type CRMConfig struct {
	// WebhookURL is the static inbound-webhook base, e.g.
	// https://portal.bitrix24.es/rest/1/abc123/. Optional: requests that
	// carry their own auth token and domain do not need it.
	WebhookURL     string               `koanf:"webhook_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	PageSize       int                  `koanf:"page_size"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// RateLimitConfig bounds outbound request rate. Zero RPS disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// LLMConfig holds settings for the generative language model.
type LLMConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// ChatConfig holds reply formatting settings.
type ChatConfig struct {
	DisplayLimit int `koanf:"display_limit"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
