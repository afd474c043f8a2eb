package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, loaded once at process start.
type Config struct {
	General  GeneralConfig  `yaml:"general"`
	Telegram TelegramConfig `yaml:"telegram"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Whisper  WhisperConfig  `yaml:"whisper"`
	Store    StoreConfig    `yaml:"store"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Reports  ReportsConfig  `yaml:"reports"`
}

type GeneralConfig struct {
	LogLevel string `yaml:"logLevel"` // debug | info | warn | error
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	APIBase string `yaml:"apiBase"`
	Model   string `yaml:"model"`
}

type WhisperConfig struct {
	Model string `yaml:"model"`
}

type StoreConfig struct {
	DBPath string `yaml:"dbPath"`
}

type WebhookConfig struct {
	Addr         string `yaml:"addr"`
	Path         string `yaml:"path"`
	DelaySeconds int    `yaml:"delayNoticeSeconds"` // interim notice threshold
}

type ReportsConfig struct {
	ChatID int64 `yaml:"chatId"` // 0 disables the scheduled reports
}

// DefaultConfigDir returns the default config directory (~/.kaibot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kaibot"
	}
	return filepath.Join(home, ".kaibot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Telegram: TelegramConfig{
			Token: "${TELEGRAM_BOT_TOKEN}",
		},
		OpenAI: OpenAIConfig{
			APIKey:  "${OPENAI_API_KEY}",
			APIBase: "https://api.openai.com/v1",
			Model:   "gpt-4.1-mini",
		},
		Whisper: WhisperConfig{
			Model: "whisper-1",
		},
		Store: StoreConfig{
			DBPath: filepath.Join(DefaultConfigDir(), "kaibot.db"),
		},
		Webhook: WebhookConfig{
			Addr:         ":8080",
			Path:         "/telegram/webhook",
			DelaySeconds: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

// Validate checks that the config has usable values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Telegram.Token == "" || strings.HasPrefix(cfg.Telegram.Token, "${") {
		errs = append(errs, "telegram.token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if cfg.OpenAI.APIKey == "" || strings.HasPrefix(cfg.OpenAI.APIKey, "${") {
		errs = append(errs, "openai.apiKey is required (set OPENAI_API_KEY)")
	}
	if cfg.Store.DBPath == "" {
		errs = append(errs, "store.dbPath is required")
	}
	if cfg.Webhook.Addr == "" {
		errs = append(errs, "webhook.addr is required")
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		errs = append(errs, "webhook.path must start with /")
	}
	if cfg.Webhook.DelaySeconds < 1 {
		errs = append(errs, "webhook.delayNoticeSeconds must be >= 1")
	}
	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
