package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/bot/handlers"
)

type fakeRegistrar struct {
	patterns []string
	funcs    []bot.HandlerFunc
}

func (f *fakeRegistrar) RegisterHandler(_ bot.HandlerType, pattern string, _ bot.MatchType, h bot.HandlerFunc, _ ...bot.Middleware) string {
	f.patterns = append(f.patterns, pattern)
	f.funcs = append(f.funcs, h)
	return pattern
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noop(context.Context, *bot.Bot, *models.Update) {}

func TestApplyMiddleware_Order(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				order = append(order, name)
				next(ctx, b, u)
			}
		}
	}
	h := applyMiddleware(func(context.Context, *bot.Bot, *models.Update) { order = append(order, "handler") },
		[]bot.Middleware{tag("outer"), tag("inner")})
	h(t.Context(), nil, &models.Update{})

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistrar{}
	err := RegisterHandlers(reg, discardLogger(), map[string]handlers.RegisteredHandler{
		"/clear": {Pattern: "clear", Handler: noop, MatchType: bot.MatchTypeCommandStartOnly},
		"/nil":   {Pattern: "nil"},
	})
	if err != nil {
		t.Fatalf("RegisterHandlers() error = %v", err)
	}
	if len(reg.patterns) != 1 || reg.patterns[0] != "clear" {
		t.Errorf("registered %v, want [clear]", reg.patterns)
	}

	if err := RegisterHandlers(nil, discardLogger(), nil); err == nil {
		t.Error("expected error for nil bot")
	}
}

func TestBotCommands(t *testing.T) {
	t.Parallel()

	got := BotCommands(map[string]handlers.RegisteredHandler{
		"/weather": {Pattern: "weather", Handler: noop, Description: "Current weather"},
		"/clear":   {Pattern: "clear", Handler: noop, Description: "Forget"},
		"/stats":   {Pattern: "stats", Handler: noop},
	})

	if len(got) != 2 {
		t.Fatalf("commands = %+v, want 2", got)
	}
	if got[0].Command != "clear" || got[1].Command != "weather" || got[1].Description != "Current weather" {
		t.Errorf("commands = %+v", got)
	}
}

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramBot("", discardLogger()); err == nil {
		t.Error("expected error for empty token")
	}
}
