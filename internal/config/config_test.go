package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("expected default read timeout 30s, got %s", cfg.ReadTimeout)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Fatalf("unexpected default embedding model: %s", cfg.EmbeddingModel)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default chat model: %s", cfg.ChatModel)
	}
	if cfg.MaxRequestBodyBytes != 1*1024*1024 {
		t.Fatalf("unexpected default body limit: %d", cfg.MaxRequestBodyBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HANDAN_PORT", "9090")
	t.Setenv("HANDAN_READ_TIMEOUT", "5s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/handan")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %s", cfg.ReadTimeout)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/handan" {
		t.Fatalf("unexpected database url: %s", cfg.DatabaseURL)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Config{DatabaseURL: "postgres://x", Port: 0, MaxRequestBodyBytes: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port 0")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port above 65535")
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := Config{Port: 8080, MaxRequestBodyBytes: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestLLMEnabled(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		disabled bool
		want     bool
	}{
		{"key set", "sk-test", false, true},
		{"no key", "", false, false},
		{"key set but disabled", "sk-test", true, false},
		{"no key and disabled", "", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{OpenAIAPIKey: tt.key, LLMDisabled: tt.disabled}
			if got := cfg.LLMEnabled(); got != tt.want {
				t.Fatalf("LLMEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvHelpersFallBackOnInvalid(t *testing.T) {
	t.Setenv("HANDAN_TEST_INT", "abc")
	if v := envInt("HANDAN_TEST_INT", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
	t.Setenv("HANDAN_TEST_BOOL", "maybe")
	if v := envBool("HANDAN_TEST_BOOL", true); !v {
		t.Fatal("expected fallback true")
	}
	t.Setenv("HANDAN_TEST_DUR", "five")
	if v := envDuration("HANDAN_TEST_DUR", 3*time.Second); v != 3*time.Second {
		t.Fatalf("expected fallback 3s, got %s", v)
	}
}
