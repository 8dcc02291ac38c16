package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type NotifierKind string

const (
	NotifierGroupMe  NotifierKind = "groupme"
	NotifierTelegram NotifierKind = "telegram"
)

type Config struct {
	// Bot identity
	BotName string `env:"BOT_NAME" envDefault:"SugarMate"`

	// Outbound delivery
	Notifier         NotifierKind  `env:"NOTIFIER" envDefault:"groupme"`
	GroupMeBotID     string        `env:"GROUPME_BOT_ID"`
	GroupMePostURL   string        `env:"GROUPME_POST_URL" envDefault:"https://api.groupme.com/v3/bots/post"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64         `env:"TELEGRAM_CHAT_ID"`
	OutboundTimeout  time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`

	// Inbound webhook
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":5000"`
	Timezone   string `env:"TIMEZONE" envDefault:"Local"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	PreferencesFilePath string `env:"PREFERENCES_FILE_PATH" envDefault:"data/user_prefs.json"`
	HealthLogFilePath   string `env:"HEALTH_LOG_FILE_PATH" envDefault:"data/health_log.json"`
	ChatHistoryFilePath string `env:"CHAT_HISTORY_FILE_PATH" envDefault:"data/chat_history.json"`

	// Reminders
	ReminderSweep bool `env:"REMINDER_SWEEP" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New parses the process environment and validates it for serving.
func New() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads the environment without checking notifier credentials, for
// commands that only touch the local data files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected notifier has what it needs to deliver.
func (c *Config) Validate() error {
	switch NotifierKind(strings.ToLower(string(c.Notifier))) {
	case NotifierGroupMe:
		if c.GroupMeBotID == "" {
			return fmt.Errorf("GROUPME_BOT_ID is required for the groupme notifier")
		}
	case NotifierTelegram:
		if c.TelegramBotToken == "" || c.TelegramChatID == 0 {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for the telegram notifier")
		}
	default:
		return fmt.Errorf("unknown notifier: %s", c.Notifier)
	}
	if c.OutboundTimeout <= 0 {
		return fmt.Errorf("OUTBOUND_TIMEOUT must be positive")
	}
	return nil
}

// AIEnabled reports whether the configured LLM provider has its credentials.
// Without them only the keyword pipeline runs.
func (c *Config) AIEnabled() bool {
	switch LLMProvider(strings.ToLower(string(c.LLMProvider))) {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderYandex:
		return c.YandexOAuthToken != "" && c.YandexFolderID != ""
	default:
		return false
	}
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
