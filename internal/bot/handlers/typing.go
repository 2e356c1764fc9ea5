package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram shows a chat action for about five seconds.
const chatActionInterval = 4 * time.Second

// keepTyping shows action in chatID until the returned stop function is
// called. stop waits for the refresher goroutine to exit.
func keepTyping(ctx context.Context, s Sender, chatID int64, action models.ChatAction) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(chatActionInterval)
		defer ticker.Stop()

		for {
			_, _ = s.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: action})
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
