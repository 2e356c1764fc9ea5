package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/edgard/relaybot/internal/chat"
)

// GroqConfig configures the OpenAI-compatible chat completions backend.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Groq talks to any OpenAI-compatible chat completions endpoint; by default
// the Groq API.
type Groq struct {
	client      *gopenai.Client
	model       string
	temperature float32
	maxTokens   int
	log         *slog.Logger
}

// NewGroq creates the client. The API key is required.
func NewGroq(cfg GroqConfig, log *slog.Logger) (*Groq, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("groq model is required")
	}
	if log == nil {
		log = slog.Default()
	}

	aiConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		aiConfig.BaseURL = cfg.BaseURL
	}

	logger := log.With("component", "groq_client")
	logger.Info("Groq client initialized", "model", cfg.Model, "base_url", aiConfig.BaseURL)
	return &Groq{
		client:      gopenai.NewClientWithConfig(aiConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         logger,
	}, nil
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Generate(ctx context.Context, history []chat.Message) (string, error) {
	messages := make([]gopenai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, gopenai.ChatCompletionMessage{
			Role:    groqRole(m.Role),
			Content: m.Content,
		})
	}

	g.log.DebugContext(ctx, "Sending chat completion", "message_count", len(messages))
	resp, err := g.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", g.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: ErrEmptyReply}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: ErrEmptyReply}
	}
	return text, nil
}

func (g *Groq) classify(ctx context.Context, err error) error {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(g.Name(), apiErr.HTTPStatusCode, err)
	}
	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(g.Name(), reqErr.HTTPStatusCode, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Provider: g.Name(), Kind: KindTimeout, Err: err}
	}
	return Normalize(g.Name(), err)
}

func groqRole(r chat.Role) string {
	switch r {
	case chat.RoleSystem:
		return gopenai.ChatMessageRoleSystem
	case chat.RoleAssistant:
		return gopenai.ChatMessageRoleAssistant
	default:
		return gopenai.ChatMessageRoleUser
	}
}
