// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"google.golang.org/genai"

	"github.com/edgard/relaybot/internal/bot"
	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/chat"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/dispatch"
	"github.com/edgard/relaybot/internal/logger"
	"github.com/edgard/relaybot/internal/provider"
	"github.com/edgard/relaybot/internal/session"
	"github.com/edgard/relaybot/internal/telegram"
	"github.com/edgard/relaybot/internal/text"
	"github.com/edgard/relaybot/internal/tools"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db, providers, bot, scheduler),
// handles graceful shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	clients, genaiClient, err := newProviders(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize model providers", "error", err)
		return 1
	}

	sessions := session.NewStore(session.Config{
		MaxHistory:     cfg.Session.MaxHistory,
		IdleTTL:        cfg.Session.IdleTTL,
		SweepEvery:     cfg.Session.SweepEvery,
		Persona:        cfg.Session.Persona,
		DefaultBackend: chat.Primary,
	})

	dispatcher, err := dispatch.New(dispatch.Deps{
		Store:    sessions,
		Clients:  clients,
		Recorder: bot.NewAuditRecorder(store),
		Logger:   log,
	}, dispatch.Config{
		Timeout:        cfg.Dispatch.ProviderTimeout,
		MaxReplyLength: cfg.ReplyChunkLimit(),
		Format:         replyFormat(cfg),
	})
	if err != nil {
		log.Error("Failed to create dispatcher", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Weather: tools.NewWeather(tools.WeatherConfig{
			APIKey:  cfg.Tools.WeatherAPIKey,
			BaseURL: cfg.Tools.WeatherBaseURL,
			Timeout: cfg.Tools.Timeout,
		}, log),
		News: tools.NewNews(tools.NewsConfig{
			APIKey:  cfg.Tools.NewsAPIKey,
			BaseURL: cfg.Tools.NewsBaseURL,
			Country: cfg.Tools.NewsCountry,
			Limit:   cfg.Tools.NewsLimit,
			Timeout: cfg.Tools.Timeout,
		}, log),
		Images: tools.NewImageGenerator(genaiClient, cfg.Gemini.ImageModel, log),
		Store:  store,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Sessions: sessions,
		Store:    store,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.Authorized(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, log, cmdHandlers); err != nil {
		// The menu is cosmetic; commands work without it.
		log.Warn("Failed to publish bot commands", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// newProviders builds a client for every backend with an API key, each behind
// its own circuit breaker. The genai client is shared with image generation
// and is nil when Gemini is not configured.
func newProviders(ctx context.Context, cfg *config.Config, log *slog.Logger) (map[chat.Backend]provider.Client, *genai.Client, error) {
	clients := make(map[chat.Backend]provider.Client, 2)
	breaker := provider.BreakerConfig{
		Failures: cfg.Dispatch.BreakerFailures,
		Cooldown: cfg.Dispatch.BreakerCooldown,
	}

	if cfg.Groq.APIKey != "" {
		groq, err := provider.NewGroq(provider.GroqConfig{
			APIKey:      cfg.Groq.APIKey,
			BaseURL:     cfg.Groq.BaseURL,
			Model:       cfg.Groq.Model,
			Temperature: cfg.Groq.Temperature,
			MaxTokens:   cfg.Groq.MaxTokens,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("groq: %w", err)
		}
		slot, err := cfg.BackendFor(config.BackendGroq)
		if err != nil {
			return nil, nil, err
		}
		clients[slot] = provider.WithBreaker(groq, breaker, log)
	}

	var genaiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		var err error
		genaiClient, err = provider.NewGenAIClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini: %w", err)
		}
		gemini, err := provider.NewGemini(genaiClient, provider.GeminiConfig{
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini: %w", err)
		}
		slot, err := cfg.BackendFor(config.BackendGemini)
		if err != nil {
			return nil, nil, err
		}
		clients[slot] = provider.WithBreaker(gemini, breaker, log)
	}

	if len(clients) == 0 {
		log.Warn("No model provider configured; chat messages will get the busy reply")
	}
	for slot, c := range clients {
		log.Info("Model provider ready", "backend", slot.String(), "provider", c.Name())
	}
	return clients, genaiClient, nil
}

// replyFormat returns the formatter applied to replies before delivery.
// Messages are sent without a parse mode, so markdown is stripped unless
// plain text is turned off.
func replyFormat(cfg *config.Config) func(string) string {
	if !cfg.Dispatch.PlainText {
		return nil
	}
	return text.Plain
}
