package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/dispatch"
	"github.com/edgard/relaybot/internal/session"
	"github.com/edgard/relaybot/internal/tools"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Sessions   *session.Store
	Dispatcher *dispatch.Dispatcher
	Weather    *tools.Weather
	News       *tools.News
	Images     *tools.ImageGenerator
	// Store is the dispatch audit log; nil disables /stats.
	Store database.Store
}

// Sender is the part of the Telegram API the handlers use. *bot.Bot
// implements it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

var _ Sender = (*bot.Bot)(nil)
