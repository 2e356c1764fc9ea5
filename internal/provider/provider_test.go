package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusBadRequest, KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := FromStatus(tt.status); got != tt.want {
				t.Errorf("FromStatus(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	typed := &Error{Provider: "x", Kind: KindRateLimited}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: KindTimeout},
		{name: "empty reply", err: ErrEmptyReply, want: KindUnavailable},
		{name: "plain error", err: errors.New("connection reset"), want: KindTransport},
		{name: "already typed", err: fmt.Errorf("wrapped: %w", typed), want: KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Normalize("x", tt.err)
			kind, ok := KindOf(err)
			if !ok {
				t.Fatalf("Normalize returned untyped error %v", err)
			}
			if kind != tt.want {
				t.Errorf("kind = %v, want %v", kind, tt.want)
			}
			if !errors.Is(err, tt.err) && !errors.Is(tt.err, err) {
				t.Errorf("normalized error lost the cause: %v", err)
			}
		})
	}

	if Normalize("x", nil) != nil {
		t.Error("Normalize(nil) must be nil")
	}
}

func TestKindOf_Untyped(t *testing.T) {
	t.Parallel()

	if _, ok := KindOf(errors.New("boom")); ok {
		t.Error("expected untyped error to report ok=false")
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Provider: "groq", Kind: KindRateLimited, Status: 429, Err: errors.New("slow down")}
	want := "groq: rate_limited (status 429): slow down"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
