package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewUseHandler returns a handler for /use, which sets the sender's preferred
// backend. Fallback never changes this preference.
func NewUseHandler(deps HandlerDeps) bot.HandlerFunc {
	return useHandler{deps}.Handle
}

type useHandler struct {
	deps HandlerDeps
}

func (h useHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h useHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "use")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	msgs := h.deps.Config.Messages

	arg := commandArgs(msg.Text)
	if arg == "" {
		sendText(ctx, s, log, msg.Chat.ID, msgs.Usage.Use)
		return
	}
	backend, err := h.deps.Config.BackendFor(arg)
	if err != nil {
		log.DebugContext(ctx, "Rejected backend name", "user_id", msg.From.ID, "error", err)
		sendText(ctx, s, log, msg.Chat.ID, msgs.Usage.Use)
		return
	}
	if !h.deps.Dispatcher.Configured(backend) {
		sendText(ctx, s, log, msg.Chat.ID, msgs.NotConfigured)
		return
	}

	h.deps.Sessions.SetPreferred(msg.From.ID, displayName(msg.From), backend)
	name := h.deps.Config.BackendName(backend)
	log.InfoContext(ctx, "Preferred backend changed", "user_id", msg.From.ID, "backend", backend.String(), "provider", name)
	sendText(ctx, s, log, msg.Chat.ID, fill(msgs.BackendSwitched, "backend", name))
}
