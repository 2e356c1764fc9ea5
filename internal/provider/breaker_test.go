package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgard/relaybot/internal/chat"
)

type stubClient struct {
	name  string
	calls atomic.Int32
	fn    func() (string, error)
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Generate(context.Context, []chat.Message) (string, error) {
	s.calls.Add(1)
	return s.fn()
}

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	stub := &stubClient{name: "groq", fn: func() (string, error) {
		return "", &Error{Provider: "groq", Kind: KindRateLimited}
	}}
	c := WithBreaker(stub, BreakerConfig{Failures: 2, Cooldown: time.Hour}, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), nil)
		if kind, _ := KindOf(err); kind != KindRateLimited {
			t.Fatalf("call %d: kind = %v, want rate_limited", i, kind)
		}
	}

	_, err := c.Generate(context.Background(), nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if kind, _ := KindOf(err); kind != KindUnavailable {
		t.Errorf("kind = %v, want unavailable", kind)
	}
	if got := stub.calls.Load(); got != 2 {
		t.Errorf("underlying calls = %d, want 2", got)
	}
	if c.Name() != "groq" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestWithBreaker_SuccessPassesThrough(t *testing.T) {
	t.Parallel()

	stub := &stubClient{name: "gemini", fn: func() (string, error) { return "ok", nil }}
	c := WithBreaker(stub, BreakerConfig{Failures: 1}, discardLogger())

	for i := 0; i < 3; i++ {
		got, err := c.Generate(context.Background(), nil)
		if err != nil || got != "ok" {
			t.Fatalf("Generate() = %q, %v", got, err)
		}
	}
}

func TestWithBreaker_Disabled(t *testing.T) {
	t.Parallel()

	stub := &stubClient{name: "groq"}
	if c := WithBreaker(stub, BreakerConfig{}, nil); c != Client(stub) {
		t.Error("expected the client to be returned unchanged")
	}
}
