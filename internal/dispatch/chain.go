package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/relaybot/internal/chat"
	"github.com/edgard/relaybot/internal/provider"
)

// Link is one entry of a fallback chain.
type Link struct {
	Backend chat.Backend
	Client  provider.Client
}

// Chain is an ordered list of providers tried one after another until one
// produces a reply. Each provider gets exactly one attempt.
type Chain []Link

// Outcome describes a successful chain run.
type Outcome struct {
	Text     string
	Served   Link
	Attempts int
}

// Generate sends history to each link in order and returns the first
// non-empty reply. Every attempt is bounded by timeout (zero means the
// caller's context only). When all links fail the returned error wraps
// ErrExhausted and every provider error.
func (c Chain) Generate(ctx context.Context, history []chat.Message, timeout time.Duration, log *slog.Logger) (Outcome, error) {
	if log == nil {
		log = slog.Default()
	}
	if len(c) == 0 {
		return Outcome{}, fmt.Errorf("%w: no providers configured", ErrExhausted)
	}

	var errs []error
	for i, link := range c {
		name := link.Client.Name()
		start := time.Now()
		text, err := c.attempt(ctx, link, history, timeout)
		if err == nil {
			log.DebugContext(ctx, "Provider replied",
				"provider", name,
				"backend", link.Backend.String(),
				"attempt", i+1,
				"duration_ms", time.Since(start).Milliseconds())
			return Outcome{Text: text, Served: link, Attempts: i + 1}, nil
		}

		kind, _ := provider.KindOf(err)
		log.WarnContext(ctx, "Provider failed, trying next",
			"provider", name,
			"backend", link.Backend.String(),
			"kind", kind.String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		errs = append(errs, err)

		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return Outcome{}, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

func (c Chain) attempt(ctx context.Context, link Link, history []chat.Message, timeout time.Duration) (string, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	name := link.Client.Name()
	text, err := link.Client.Generate(callCtx, history)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			if kind, ok := provider.KindOf(err); !ok || kind != provider.KindTimeout {
				return "", &provider.Error{Provider: name, Kind: provider.KindTimeout, Err: err}
			}
		}
		return "", provider.Normalize(name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindUnavailable, Err: provider.ErrEmptyReply}
	}
	return text, nil
}
