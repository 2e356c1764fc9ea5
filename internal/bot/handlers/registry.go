package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/relaybot/internal/config"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	// Description is shown in the Telegram command menu. Commands without
	// one are not advertised.
	Description string
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// It configures each command with appropriate handlers and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern, description string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Description: description,
		}
	}

	command("start", "Start the conversation", NewStartHandler(deps))
	command("help", "Show available commands", NewHelpHandler(deps))
	command("clear", "Forget our conversation", NewClearHandler(deps))
	command("status", "Show session info", NewStatusHandler(deps))
	command("use", "Choose the preferred model", NewUseHandler(deps))
	command(config.BackendGroq, "Ask Groq only", NewAskHandler(deps, config.BackendGroq))
	command(config.BackendGemini, "Ask Gemini only", NewAskHandler(deps, config.BackendGemini))
	command("weather", "Current weather for a city", NewWeatherHandler(deps))
	command("news", "Top headlines", NewNewsHandler(deps))
	command("image", "Generate an image", NewImageHandler(deps))

	command("stats", "", NewStatsHandler(deps), AdminOnly(deps))

	return handlers
}
