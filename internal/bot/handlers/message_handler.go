package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/chat"
	"github.com/edgard/relaybot/internal/dispatch"
)

// NewMessageHandler returns the default handler. Plain text goes to the
// dispatcher; commands no other handler matched get the unknown-command reply.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h messageHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	// Edits, callbacks and media without text are ignored.
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	relay(ctx, s, h.deps, log, update.Message, update.Message.Text, nil)
}

// relay runs text through the dispatcher and delivers the reply. A nil
// backend uses the preferred-first chain; otherwise only that backend is
// tried.
func relay(ctx context.Context, s Sender, deps HandlerDeps, log *slog.Logger, msg *models.Message, text string, backend *chat.Backend) {
	chatID := msg.Chat.ID
	req := dispatch.Request{
		UserID:      msg.From.ID,
		DisplayName: displayName(msg.From),
		Text:        text,
	}

	stop := keepTyping(ctx, s, chatID, models.ChatActionTyping)
	var (
		res dispatch.Result
		err error
	)
	if backend == nil {
		res, err = deps.Dispatcher.Dispatch(ctx, req)
	} else {
		res, err = deps.Dispatcher.DispatchVia(ctx, req, *backend)
	}
	stop()

	msgs := deps.Config.Messages
	switch {
	case err == nil:
		log.InfoContext(ctx, "Relaying reply", "chat_id", chatID, "user_id", req.UserID,
			"provider", res.Provider, "attempts", res.Attempts, "chunks", len(res.Chunks))
		if sendChunks(ctx, s, log, msg, deps.Config.Dispatch.ReplyPrefix, res.Chunks) == 0 {
			sendText(ctx, s, log, chatID, msgs.GeneralError)
		}
	case errors.Is(err, dispatch.ErrEmptyMessage):
		log.DebugContext(ctx, "Ignoring blank message", "chat_id", chatID)
	case errors.Is(err, dispatch.ErrCommand):
		log.InfoContext(ctx, "Unknown command", "chat_id", chatID, "command", commandName(text))
		sendText(ctx, s, log, chatID, msgs.UnknownCommand)
	case errors.Is(err, dispatch.ErrNotConfigured):
		sendText(ctx, s, log, chatID, msgs.NotConfigured)
	case errors.Is(err, dispatch.ErrExhausted):
		sendText(ctx, s, log, chatID, msgs.Busy)
	default:
		log.ErrorContext(ctx, "Dispatch failed", "error", err, "chat_id", chatID)
		sendText(ctx, s, log, chatID, msgs.GeneralError)
	}
}
