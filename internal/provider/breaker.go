package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgard/relaybot/internal/chat"
)

// BreakerConfig configures WithBreaker.
type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures int
	// Cooldown is how long the breaker stays open before a probe is allowed.
	Cooldown time.Duration
}

type breakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps c in a circuit breaker. While the breaker is open calls
// fail immediately with KindUnavailable. A non-positive Failures returns c
// unchanged.
func WithBreaker(c Client, cfg BreakerConfig, log *slog.Logger) Client {
	if cfg.Failures <= 0 {
		return c
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	logger := log.With("component", "circuit_breaker", "provider", c.Name())

	threshold := uint32(cfg.Failures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        c.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return &breakerClient{next: c, cb: cb}
}

func (b *breakerClient) Name() string { return b.next.Name() }

func (b *breakerClient) Generate(ctx context.Context, history []chat.Message) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, history)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &Error{Provider: b.Name(), Kind: KindUnavailable, Err: err}
		}
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}
