package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/text"
	"github.com/edgard/relaybot/internal/tools"
)

// Telegram limits photo captions to 1024 UTF-16 code units.
const maxCaptionLen = 1024

// toolFailure maps a tool error to the configured reply. usage answers
// ErrEmptyQuery.
func toolFailure(msgs config.MessagesConfig, err error, usage string) string {
	switch {
	case errors.Is(err, tools.ErrNotConfigured):
		return msgs.NotConfigured
	case errors.Is(err, tools.ErrEmptyQuery):
		return usage
	case errors.Is(err, tools.ErrNotFound):
		return msgs.NotFound
	case errors.Is(err, tools.ErrUnavailable):
		return msgs.ToolUnavailable
	default:
		return msgs.GeneralError
	}
}

func logToolFailure(ctx context.Context, log *slog.Logger, err error, chatID int64) {
	if errors.Is(err, tools.ErrNotConfigured) || errors.Is(err, tools.ErrEmptyQuery) || errors.Is(err, tools.ErrNotFound) {
		log.DebugContext(ctx, "Tool request not served", "error", err, "chat_id", chatID)
		return
	}
	log.WarnContext(ctx, "Tool request failed", "error", err, "chat_id", chatID)
}

// NewWeatherHandler returns a handler for /weather <city>.
func NewWeatherHandler(deps HandlerDeps) bot.HandlerFunc {
	return weatherHandler{deps}.Handle
}

type weatherHandler struct {
	deps HandlerDeps
}

func (h weatherHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h weatherHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "weather")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	report, err := h.deps.Weather.Lookup(ctx, commandArgs(msg.Text))
	if err != nil {
		logToolFailure(ctx, log, err, msg.Chat.ID)
		sendText(ctx, s, log, msg.Chat.ID, toolFailure(h.deps.Config.Messages, err, h.deps.Config.Messages.Usage.Weather))
		return
	}
	sendText(ctx, s, log, msg.Chat.ID, "🌤 "+report.String())
}

// NewNewsHandler returns a handler for /news [topic].
func NewNewsHandler(deps HandlerDeps) bot.HandlerFunc {
	return newsHandler{deps}.Handle
}

type newsHandler struct {
	deps HandlerDeps
}

func (h newsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h newsHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "news")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	articles, err := h.deps.News.Headlines(ctx, commandArgs(msg.Text))
	if err != nil {
		logToolFailure(ctx, log, err, msg.Chat.ID)
		sendText(ctx, s, log, msg.Chat.ID, toolFailure(h.deps.Config.Messages, err, h.deps.Config.Messages.GeneralError))
		return
	}

	_, err = s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               "📰 Top headlines\n" + tools.FormatHeadlines(articles),
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send headlines", "error", err, "chat_id", msg.Chat.ID)
	}
}

// NewImageHandler returns a handler for /image <prompt>.
func NewImageHandler(deps HandlerDeps) bot.HandlerFunc {
	return imageHandler{deps}.Handle
}

type imageHandler struct {
	deps HandlerDeps
}

func (h imageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h imageHandler) handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "image")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	prompt := commandArgs(msg.Text)

	stop := keepTyping(ctx, s, msg.Chat.ID, models.ChatActionUploadPhoto)
	img, err := h.deps.Images.Generate(ctx, prompt)
	stop()
	if err != nil {
		logToolFailure(ctx, log, err, msg.Chat.ID)
		sendText(ctx, s, log, msg.Chat.ID, toolFailure(h.deps.Config.Messages, err, h.deps.Config.Messages.Usage.Image))
		return
	}

	_, err = s.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          msg.Chat.ID,
		Photo:           &models.InputFileUpload{Filename: "image" + imageExt(img.MIMEType), Data: bytes.NewReader(img.Bytes)},
		Caption:         truncateText(prompt, maxCaptionLen),
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send image", "error", err, "chat_id", msg.Chat.ID)
		sendText(ctx, s, log, msg.Chat.ID, h.deps.Config.Messages.GeneralError)
		return
	}
	log.InfoContext(ctx, "Sent generated image", "chat_id", msg.Chat.ID, "bytes", len(img.Bytes))
}

func imageExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// truncateText cuts s to at most n UTF-16 code units, ending it with "…"
// when something was dropped.
func truncateText(s string, n int) string {
	if text.UTF16Len(s) <= n {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		u := text.RuneUnits(r)
		if used+u > n-1 {
			break
		}
		sb.WriteRune(r)
		used += u
	}
	return sb.String() + "…"
}
