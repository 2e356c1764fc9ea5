package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultGroqBaseURL     = "https://api.groq.com/openai/v1"
	DefaultGroqModel       = "llama-3.3-70b-versatile"
	DefaultGroqTemperature = 0.7
	DefaultGroqMaxTokens   = 1024

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.7
	DefaultGeminiImageModel  = "imagen-3.0-generate-002"

	DefaultPrimaryBackend  = "groq"
	DefaultProviderTimeout = 30 * time.Second
	DefaultMaxReplyLength  = 4096 // Telegram's maximum message length
	DefaultReplyPrefix     = "🤖 "
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = time.Minute

	DefaultMaxHistory = 20
	DefaultIdleTTL    = time.Hour
	DefaultSweepEvery = time.Minute
	DefaultPersona    = "You are a helpful AI assistant chatting with {name}. Respond in a helpful and friendly manner."

	DefaultToolsTimeout = 10 * time.Second
	DefaultNewsCountry  = "us"
	DefaultNewsLimit    = 5

	DefaultDBPath      = "relaybot.db"
	DefaultDBRetention = 30 * 24 * time.Hour
)

// DefaultMessages are the user-facing texts.
var DefaultMessages = MessagesConfig{
	Welcome:         "👋 Hi {name}! Send me any message and I'll answer. Use /help to see what else I can do.",
	Help:            "Just write to chat. Commands:\n/clear - forget our conversation\n/status - show session info\n/use <groq|gemini> - choose the preferred model\n/groq <text> - ask Groq only\n/gemini <text> - ask Gemini only\n/weather <city> - current weather\n/news [topic] - top headlines\n/image <prompt> - generate an image",
	Cleared:         "🔄 Conversation cleared.",
	NothingToClear:  "ℹ️ There was nothing to clear.",
	Busy:            "❌ Sorry, I'm having trouble responding right now. Please try again later.",
	GeneralError:    "❌ Error occurred. Please try again.",
	NotConfigured:   "⚙️ This feature is not configured.",
	ToolUnavailable: "❌ The service is unavailable right now. Please try again later.",
	NotFound:        "🔍 Nothing found for that.",
	UnknownCommand:  "🤷 Unknown command. Use /help to see what I can do.",
	NotAuthorized:   "🚫 Access denied. Please contact the administrator.",
	BackendSwitched: "✅ Preferred model set to {backend}.",
	NoSession:       "ℹ️ No active conversation. Preferred model: {backend}.",
	NoStats:         "ℹ️ No dispatches recorded in the last 24 hours.",
	Usage: UsageMessages{
		Use:     "Usage: /use <groq|gemini|primary|secondary>",
		Ask:     "Usage: /{command} <your message>",
		Weather: "Usage: /weather <city>",
		Image:   "Usage: /image <prompt>",
	},
}

// DefaultTasks are the built-in scheduled tasks. Schedules include seconds.
var DefaultTasks = map[string]TaskConfig{
	"session_sweep":   {Enabled: true, Schedule: "0 */5 * * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 30 3 * * *"},
}

// setDefaults registers every key so BOT_* environment variables bind even
// when the config file omits them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)
	v.SetDefault("telegram.allowed_user_ids", []int64{})
	v.SetDefault("telegram.blocked_user_ids", []int64{})

	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.base_url", DefaultGroqBaseURL)
	v.SetDefault("groq.model", DefaultGroqModel)
	v.SetDefault("groq.temperature", DefaultGroqTemperature)
	v.SetDefault("groq.max_tokens", DefaultGroqMaxTokens)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.image_model", DefaultGeminiImageModel)

	v.SetDefault("dispatch.primary_backend", DefaultPrimaryBackend)
	v.SetDefault("dispatch.provider_timeout", DefaultProviderTimeout)
	v.SetDefault("dispatch.max_reply_length", DefaultMaxReplyLength)
	v.SetDefault("dispatch.reply_prefix", DefaultReplyPrefix)
	v.SetDefault("dispatch.plain_text", true)
	v.SetDefault("dispatch.breaker_failures", DefaultBreakerFailures)
	v.SetDefault("dispatch.breaker_cooldown", DefaultBreakerCooldown)

	v.SetDefault("session.max_history", DefaultMaxHistory)
	v.SetDefault("session.idle_ttl", DefaultIdleTTL)
	v.SetDefault("session.sweep_every", DefaultSweepEvery)
	v.SetDefault("session.persona", DefaultPersona)

	v.SetDefault("tools.timeout", DefaultToolsTimeout)
	v.SetDefault("tools.weather_api_key", "")
	v.SetDefault("tools.weather_base_url", "")
	v.SetDefault("tools.news_api_key", "")
	v.SetDefault("tools.news_base_url", "")
	v.SetDefault("tools.news_country", DefaultNewsCountry)
	v.SetDefault("tools.news_limit", DefaultNewsLimit)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.retention", DefaultDBRetention)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}

	m := DefaultMessages
	v.SetDefault("messages.welcome", m.Welcome)
	v.SetDefault("messages.help", m.Help)
	v.SetDefault("messages.cleared", m.Cleared)
	v.SetDefault("messages.nothing_to_clear", m.NothingToClear)
	v.SetDefault("messages.busy", m.Busy)
	v.SetDefault("messages.general_error", m.GeneralError)
	v.SetDefault("messages.not_configured", m.NotConfigured)
	v.SetDefault("messages.tool_unavailable", m.ToolUnavailable)
	v.SetDefault("messages.not_found", m.NotFound)
	v.SetDefault("messages.unknown_command", m.UnknownCommand)
	v.SetDefault("messages.not_authorized", m.NotAuthorized)
	v.SetDefault("messages.backend_switched", m.BackendSwitched)
	v.SetDefault("messages.no_session", m.NoSession)
	v.SetDefault("messages.no_stats", m.NoStats)
	v.SetDefault("messages.usage.use", m.Usage.Use)
	v.SetDefault("messages.usage.ask", m.Usage.Ask)
	v.SetDefault("messages.usage.weather", m.Usage.Weather)
	v.SetDefault("messages.usage.image", m.Usage.Image)
}
