package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.CRM.validate(),
		c.LLM.validate(),
		c.Chat.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (c *CRMConfig) validate() error {
	var errs []error

	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("crm.webhook_url must be an absolute URL, got %q", c.WebhookURL))
		}
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("crm.timeout must be positive"))
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("crm.page_size must be >= 1, got %d", c.PageSize))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("crm.rate_limit.requests_per_second must not be negative"))
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("crm.rate_limit.burst must be >= 1, got %d", c.RateLimit.Burst))
	}
	if c.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("crm.circuit_breaker.max_failures must be >= 1, got %d",
			c.CircuitBreaker.MaxFailures))
	}

	return errors.Join(errs...)
}

func (l *LLMConfig) validate() error {
	var errs []error

	if l.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key must not be empty (set GEMINI_KEY or APP_LLM_API_KEY)"))
	}
	if l.Model == "" {
		errs = append(errs, errors.New("llm.model must not be empty"))
	}
	if l.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (c *ChatConfig) validate() error {
	if c.DisplayLimit < 1 {
		return fmt.Errorf("chat.display_limit must be >= 1, got %d", c.DisplayLimit)
	}
	return nil
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
