package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAskHandler returns a handler for an explicit single-provider command
// such as /groq or /gemini. The provider is asked alone, without fallback,
// and shares the sender's conversation history.
func NewAskHandler(deps HandlerDeps, provider string) bot.HandlerFunc {
	return askHandler{deps: deps, provider: provider}.Handle
}

type askHandler struct {
	deps     HandlerDeps
	provider string
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h askHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask", "provider", h.provider)
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	text := commandArgs(msg.Text)
	if text == "" {
		sendText(ctx, s, log, msg.Chat.ID, fill(h.deps.Config.Messages.Usage.Ask, "command", h.provider))
		return
	}

	backend, err := h.deps.Config.BackendFor(h.provider)
	if err != nil {
		log.ErrorContext(ctx, "Ask handler bound to unknown provider", "error", err)
		sendText(ctx, s, log, msg.Chat.ID, h.deps.Config.Messages.GeneralError)
		return
	}
	relay(ctx, s, h.deps, log, msg, text, &backend)
}
