// Package config loads the bot configuration from a YAML file, BOT_*
// environment variables and built-in defaults, and validates it.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the complete application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Groq      GroqConfig      `mapstructure:"groq"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Session   SessionConfig   `mapstructure:"session"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig configures log/slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig configures the Telegram transport and access control.
type TelegramConfig struct {
	Token          string  `mapstructure:"token" validate:"required"`
	AdminUserID    int64   `mapstructure:"admin_user_id" validate:"gte=0"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"`
	BlockedUserIDs []int64 `mapstructure:"blocked_user_ids"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// GroqConfig configures the OpenAI-compatible backend. An empty APIKey
// disables the backend.
type GroqConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
	Model       string  `mapstructure:"model" validate:"required_with=APIKey"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gte=0"`
}

// GeminiConfig configures the Gemini backend and image generation. An empty
// APIKey disables both.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
	Model       string  `mapstructure:"model" validate:"required_with=APIKey"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	ImageModel  string  `mapstructure:"image_model"`
}

// DispatchConfig configures the chat pipeline. PlainText converts markdown
// in model replies to plain text before delivery.
type DispatchConfig struct {
	// PrimaryBackend names the provider placed in the primary slot.
	PrimaryBackend  string        `mapstructure:"primary_backend" validate:"required,oneof=groq gemini"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout" validate:"required,gt=0"`
	MaxReplyLength  int           `mapstructure:"max_reply_length" validate:"required,gt=0,lte=4096"`
	ReplyPrefix     string        `mapstructure:"reply_prefix"`
	PlainText       bool          `mapstructure:"plain_text"`
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"gte=0"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" validate:"gte=0"`
}

// SessionConfig configures the in-memory conversation store.
type SessionConfig struct {
	MaxHistory int           `mapstructure:"max_history" validate:"required,gte=2"`
	IdleTTL    time.Duration `mapstructure:"idle_ttl" validate:"required,gt=0"`
	SweepEvery time.Duration `mapstructure:"sweep_every"`
	Persona    string        `mapstructure:"persona"`
}

// ToolsConfig configures the weather and news collaborators. Empty keys
// make the commands answer with the not-configured message.
type ToolsConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	WeatherAPIKey  string        `mapstructure:"weather_api_key"`
	WeatherBaseURL string        `mapstructure:"weather_base_url" validate:"omitempty,url"`
	NewsAPIKey     string        `mapstructure:"news_api_key"`
	NewsBaseURL    string        `mapstructure:"news_base_url" validate:"omitempty,url"`
	NewsCountry    string        `mapstructure:"news_country" validate:"omitempty,len=2"`
	NewsLimit      int           `mapstructure:"news_limit" validate:"gte=1,lte=20"`
}

// DatabaseConfig configures the dispatch audit log.
type DatabaseConfig struct {
	Path      string        `mapstructure:"path" validate:"required"`
	Retention time.Duration `mapstructure:"retention" validate:"gt=0"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron expression with a leading seconds field.
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds the user-facing texts.
type MessagesConfig struct {
	Welcome         string        `mapstructure:"welcome" validate:"required"`
	Help            string        `mapstructure:"help" validate:"required"`
	Cleared         string        `mapstructure:"cleared" validate:"required"`
	NothingToClear  string        `mapstructure:"nothing_to_clear" validate:"required"`
	Busy            string        `mapstructure:"busy" validate:"required"`
	GeneralError    string        `mapstructure:"general_error" validate:"required"`
	NotConfigured   string        `mapstructure:"not_configured" validate:"required"`
	ToolUnavailable string        `mapstructure:"tool_unavailable" validate:"required"`
	NotFound        string        `mapstructure:"not_found" validate:"required"`
	UnknownCommand  string        `mapstructure:"unknown_command" validate:"required"`
	NotAuthorized   string        `mapstructure:"not_authorized" validate:"required"`
	BackendSwitched string        `mapstructure:"backend_switched" validate:"required"`
	NoSession       string        `mapstructure:"no_session" validate:"required"`
	NoStats         string        `mapstructure:"no_stats" validate:"required"`
	Usage           UsageMessages `mapstructure:"usage"`
}

// UsageMessages are shown when a command is missing its argument.
type UsageMessages struct {
	Use     string `mapstructure:"use" validate:"required"`
	Ask     string `mapstructure:"ask" validate:"required"`
	Weather string `mapstructure:"weather" validate:"required"`
	Image   string `mapstructure:"image" validate:"required"`
}
