package config_test

import (
	"testing"
	"time"

	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
)

func TestLoad_LocalProfile(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "test-key")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want \"debug\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want \"text\"", cfg.Log.Format)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false for local")
	}
	if len(cfg.Server.CORS.AllowedOrigins) != 2 {
		t.Errorf("len(Server.CORS.AllowedOrigins) = %d, want 2", len(cfg.Server.CORS.AllowedOrigins))
	}
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "test-key")

	cfg, err := config.Load("prod")
	if err != nil {
		t.Fatalf("Load(\"prod\") error: %v", err)
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want \"json\"", cfg.Log.Format)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true for prod")
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Errorf("Telemetry.Exporter = %q, want \"otlp\"", cfg.Telemetry.Exporter)
	}
}

func TestLoad_BaseConfigInheritance(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "test-key")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.CRM.Timeout != 20*time.Second {
		t.Errorf("CRM.Timeout = %v, want 20s (from base)", cfg.CRM.Timeout)
	}
	if cfg.LLM.Model != "gemini-1.5-flash" {
		t.Errorf("LLM.Model = %q, want gemini-1.5-flash (from base)", cfg.LLM.Model)
	}
	if cfg.Chat.DisplayLimit != 15 {
		t.Errorf("Chat.DisplayLimit = %d, want 15 (from base)", cfg.Chat.DisplayLimit)
	}
	if cfg.CRM.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("CRM.CircuitBreaker.MaxFailures = %d, want 5 (from base)",
			cfg.CRM.CircuitBreaker.MaxFailures)
	}
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "legacy-key")
	t.Setenv("BITRIX_WEBHOOK", "https://portal.bitrix24.es/rest/1/abc/")
	t.Setenv("PORT", "5000")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.LLM.APIKey != "legacy-key" {
		t.Errorf("LLM.APIKey = %q, want legacy-key", cfg.LLM.APIKey)
	}
	if cfg.CRM.WebhookURL != "https://portal.bitrix24.es/rest/1/abc/" {
		t.Errorf("CRM.WebhookURL = %q", cfg.CRM.WebhookURL)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
}

func TestLoad_PrefixedEnvBeatsLegacy(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "legacy-key")
	t.Setenv("APP_LLM_API_KEY", "prefixed-key")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.LLM.APIKey != "prefixed-key" {
		t.Errorf("LLM.APIKey = %q, want prefixed-key", cfg.LLM.APIKey)
	}
}

func TestLoad_EnvOverrideSnakeCaseKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "test-key")
	t.Setenv("APP_SERVER_READ_TIMEOUT", "15s")
	t.Setenv("APP_CRM_CIRCUIT_BREAKER_MAX_FAILURES", "7")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s (env override)", cfg.Server.ReadTimeout)
	}
	if cfg.CRM.CircuitBreaker.MaxFailures != 7 {
		t.Errorf("CRM.CircuitBreaker.MaxFailures = %d, want 7 (env override)", cfg.CRM.CircuitBreaker.MaxFailures)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("GEMINI_KEY", "")
	t.Setenv("APP_LLM_API_KEY", "")

	if _, err := config.Load("local"); err == nil {
		t.Fatal("Load returned nil error without an API key, want error")
	}
}

func TestLoad_MissingProfile(t *testing.T) {
	t.Chdir("../../..")

	_, err := config.Load("nonexistent")
	if err == nil {
		t.Fatal("Load(\"nonexistent\") returned nil error, want error")
	}
}

func TestLoad_UnsafeProfile(t *testing.T) {
	t.Parallel()

	for _, profile := range []string{"", "  ", "../etc", `a\b`} {
		if _, err := config.Load(profile); err == nil {
			t.Errorf("Load(%q) returned nil error, want error", profile)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "port zero", mutate: func(c *config.Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "bad log level", mutate: func(c *config.Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "relative webhook", mutate: func(c *config.Config) { c.CRM.WebhookURL = "rest/1/abc" }, wantErr: true},
		{name: "no webhook is fine", mutate: func(c *config.Config) { c.CRM.WebhookURL = "" }},
		{name: "zero page size", mutate: func(c *config.Config) { c.CRM.PageSize = 0 }, wantErr: true},
		{name: "missing api key", mutate: func(c *config.Config) { c.LLM.APIKey = "" }, wantErr: true},
		{name: "zero display limit", mutate: func(c *config.Config) { c.Chat.DisplayLimit = 0 }, wantErr: true},
		{
			name: "otlp without endpoint",
			mutate: func(c *config.Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "otlp"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validBaseConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: config.LogConfig{Level: "info", Format: "json"},
		CRM: config.CRMConfig{
			WebhookURL: "https://portal.bitrix24.es/rest/1/abc/",
			Timeout:    20 * time.Second,
			PageSize:   50,
			RateLimit:  config.RateLimitConfig{RequestsPerSecond: 2, Burst: 4},
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 1,
			},
		},
		LLM:       config.LLMConfig{APIKey: "k", Model: "gemini-1.5-flash", Timeout: 30 * time.Second},
		Chat:      config.ChatConfig{DisplayLimit: 15},
		Telemetry: config.TelemetryConfig{Exporter: "stdout"},
	}
}
