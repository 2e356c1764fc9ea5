// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly creates a middleware that checks if the message sender is the configured admin user.
// If not, it sends a "Not Authorized" message and stops processing by returning early.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return guard(deps, "AdminOnly", deps.Config.IsAdmin)
}

// Authorized creates a middleware that enforces the allowed and blocked user
// lists for every update that carries a message.
func Authorized(deps HandlerDeps) tgbot.Middleware {
	return guard(deps, "Authorized", deps.Config.IsUserAuthorized)
}

func guard(deps HandlerDeps, name string, allow func(userID int64) bool) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}
			if !deny(ctx, bot, deps, name, update, allow) {
				next(ctx, bot, update)
			}
		}
	}
}

// deny answers with the not-authorized message and returns true when the
// sender fails allow.
func deny(ctx context.Context, s Sender, deps HandlerDeps, name string, update *models.Update, allow func(int64) bool) bool {
	userID := update.Message.From.ID
	if allow(userID) {
		return false
	}

	chatID := update.Message.Chat.ID
	log := deps.Logger.With("middleware", name)
	log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
	sendText(ctx, s, log, chatID, deps.Config.Messages.NotAuthorized)
	return true
}
