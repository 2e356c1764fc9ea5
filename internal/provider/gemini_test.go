package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/edgard/relaybot/internal/chat"
)

func newGeminiForTest(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGenAIClient(context.Background(), "test-key", server.URL+"/")
	if err != nil {
		t.Fatalf("NewGenAIClient() error = %v", err)
	}
	g, err := NewGemini(client, GeminiConfig{Model: "gemini-test", Temperature: 0.5}, discardLogger())
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	return g
}

func TestGemini_Generate(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var req struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		SystemInstruction *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
	}
	g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		mu.Lock()
		defer mu.Unlock()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi from Gemini"}]},"finishReason":"STOP"}]}`)
	})

	reply, err := g.Generate(context.Background(), []chat.Message{
		{Role: chat.RoleSystem, Content: "be kind"},
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "hey"},
		{Role: chat.RoleUser, Content: "how are you"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "Hi from Gemini" {
		t.Errorf("reply = %q", reply)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(req.Contents) != 3 {
		t.Fatalf("contents = %d, want 3 (system goes to systemInstruction)", len(req.Contents))
	}
	if req.Contents[1].Role != "model" {
		t.Errorf("assistant turn role = %q, want model", req.Contents[1].Role)
	}
	if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) == 0 || req.SystemInstruction.Parts[0].Text != "be kind" {
		t.Errorf("system instruction not forwarded: %+v", req.SystemInstruction)
	}
}

func TestGemini_Generate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			want:   KindRateLimited,
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403,"message":"api key invalid","status":"PERMISSION_DENIED"}}`,
			want:   KindUnauthorized,
		},
		{
			name:   "no candidates",
			status: http.StatusOK,
			body:   `{"candidates":[]}`,
			want:   KindUnavailable,
		},
		{
			name:   "blocked",
			status: http.StatusOK,
			body:   `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			want:   KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := g.Generate(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
			kind, ok := KindOf(err)
			if !ok {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if kind != tt.want {
				t.Errorf("kind = %v, want %v (err: %v)", kind, tt.want, err)
			}
		})
	}
}

func TestNewGemini_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewGemini(nil, GeminiConfig{Model: "m"}, nil); err == nil {
		t.Error("expected error for nil client")
	}
	if _, err := NewGenAIClient(context.Background(), "", ""); err == nil {
		t.Error("expected error for missing API key")
	}
}
