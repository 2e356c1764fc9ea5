package handlers

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// sendText sends a plain message to chatID and logs a failure.
func sendText(ctx context.Context, s Sender, log *slog.Logger, chatID int64, text string) {
	if _, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// sendChunks delivers chunks in order and returns how many were sent. The
// first chunk carries prefix and replies to msg. Delivery stops at the first
// failed chunk.
func sendChunks(ctx context.Context, s Sender, log *slog.Logger, msg *models.Message, prefix string, chunks []string) int {
	for i, chunk := range chunks {
		params := &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: chunk}
		if i == 0 {
			params.Text = prefix + chunk
			params.ReplyParameters = &models.ReplyParameters{
				MessageID:                msg.ID,
				AllowSendingWithoutReply: true,
			}
		}
		if _, err := s.SendMessage(ctx, params); err != nil {
			log.ErrorContext(ctx, "Failed to send reply chunk", "error", err,
				"chat_id", msg.Chat.ID, "chunk", i+1, "chunks", len(chunks))
			return i
		}
	}
	return len(chunks)
}

// displayName picks the name used in the persona and greetings.
func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return u.Username
}

// commandArgs returns the text after the leading "/command[@bot]" token.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

// fill replaces a {key} placeholder in a configured message.
func fill(template, key, value string) string {
	return strings.ReplaceAll(template, "{"+key+"}", value)
}

// validMessage reports whether update carries a message with a sender.
func validMessage(ctx context.Context, log *slog.Logger, update *models.Update) bool {
	if update == nil || update.Message == nil || update.Message.From == nil {
		id := int64(0)
		if update != nil {
			id = update.ID
		}
		log.WarnContext(ctx, "Handler received update with nil message or sender", "update_id", id)
		return false
	}
	return true
}

// commandName returns "/command" without arguments or "@bot" suffix.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}
