package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/chat"
)

// NewStatusHandler returns a handler for the /status command. It reads the
// session without refreshing its idle timer.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h statusHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	sess, ok := h.deps.Sessions.Get(msg.From.ID)
	if !ok {
		sendText(ctx, s, log, msg.Chat.ID,
			fill(h.deps.Config.Messages.NoSession, "backend", h.describe(chat.Primary)))
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Session status\n")
	fmt.Fprintf(&sb, "Model: %s\n", h.describe(sess.Preferred))
	fmt.Fprintf(&sb, "Messages: %d\n", sess.MessageCount)
	fmt.Fprintf(&sb, "History: %d entries\n", len(sess.History))
	fmt.Fprintf(&sb, "Started: %s\n", sess.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&sb, "Last active: %s", sess.LastActivity.UTC().Format("2006-01-02 15:04 MST"))
	sendText(ctx, s, log, msg.Chat.ID, sb.String())
}

func (h statusHandler) describe(b chat.Backend) string {
	d := fmt.Sprintf("%s (%s)", h.deps.Config.BackendName(b), b)
	if !h.deps.Dispatcher.Configured(b) {
		d += ", not configured"
	}
	return d
}
