package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("KAIBOT_TEST_TOKEN", "secret123")

	tests := []struct {
		in   string
		want string
	}{
		{"${KAIBOT_TEST_TOKEN}", "secret123"},
		{"${KAIBOT_TEST_MISSING}", "${KAIBOT_TEST_MISSING}"},
		{"${KAIBOT_TEST_MISSING:-fallback}", "fallback"},
		{"prefix-${KAIBOT_TEST_TOKEN}-suffix", "prefix-secret123-suffix"},
		{"no vars here", "no vars here"},
	}
	for _, tt := range tests {
		if got := ExpandEnvVars(tt.in); got != tt.want {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadExpandsAndValidates(t *testing.T) {
	t.Setenv("KAIBOT_TEST_TG", "tg-token")
	t.Setenv("KAIBOT_TEST_OAI", "oai-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
telegram:
  token: ${KAIBOT_TEST_TG}
openai:
  apiKey: ${KAIBOT_TEST_OAI}
store:
  dbPath: ` + filepath.Join(dir, "test.db") + `
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "tg-token" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.OpenAI.APIKey != "oai-key" {
		t.Errorf("APIKey = %q", cfg.OpenAI.APIKey)
	}
	// Unset fields keep defaults.
	if cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("Model = %q, want default", cfg.OpenAI.Model)
	}
	if cfg.Webhook.DelaySeconds != 3 {
		t.Errorf("DelaySeconds = %d, want 3", cfg.Webhook.DelaySeconds)
	}
}

func TestLoadRejectsUnexpandedSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
telegram:
  token: ${KAIBOT_DEFINITELY_UNSET_VAR}
openai:
  apiKey: ${KAIBOT_DEFINITELY_UNSET_VAR_2}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for unexpanded secrets")
	}
	if !strings.Contains(err.Error(), "telegram.token") {
		t.Errorf("error should name telegram.token: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.Token = "t"
	cfg.OpenAI.APIKey = "k"
	if err := Validate(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.Webhook.Path = "no-slash"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for webhook path without leading slash")
	}
	cfg.Webhook.Path = "/hook"

	cfg.Webhook.DelaySeconds = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected error for zero delay threshold")
	}
	cfg.Webhook.DelaySeconds = 3

	cfg.General.LogLevel = "verbose"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Defaults()
	cfg.Telegram.Token = "round-trip-token"
	cfg.OpenAI.APIKey = "round-trip-key"
	cfg.Reports.ChatID = 777

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Reports.ChatID != 777 {
		t.Errorf("ChatID = %d, want 777", loaded.Reports.ChatID)
	}
}
