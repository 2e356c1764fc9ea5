package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewClearHandler returns a handler for the /clear command, which forgets
// the sender's conversation.
func NewClearHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h clearHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "clear")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	text := h.deps.Config.Messages.NothingToClear
	if h.deps.Sessions.Clear(msg.From.ID) {
		text = h.deps.Config.Messages.Cleared
		log.InfoContext(ctx, "Conversation cleared", "user_id", msg.From.ID)
	}
	sendText(ctx, s, log, msg.Chat.ID, text)
}
