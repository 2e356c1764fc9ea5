package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/relaybot/internal/chat"
)

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	Model       string
	Temperature float32
}

// NewGenAIClient creates the shared Gemini API client used by the Gemini
// provider and the image generator. baseURL is optional.
func NewGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	gi, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return gi, nil
}

// Gemini generates replies with Google's Gemini models.
type Gemini struct {
	client        *genai.Client
	model         string
	contentConfig genai.GenerateContentConfig
	log           *slog.Logger
}

// NewGemini wraps an existing genai client.
func NewGemini(client *genai.Client, cfg GeminiConfig, log *slog.Logger) (*Gemini, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	if log == nil {
		log = slog.Default()
	}

	temperature := cfg.Temperature
	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.Model)
	return &Gemini{
		client: client,
		model:  cfg.Model,
		contentConfig: genai.GenerateContentConfig{
			Temperature: &temperature,
		},
		log: logger,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, history []chat.Message) (string, error) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range history {
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := g.contentConfig
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}

	g.log.DebugContext(ctx, "Generating reply", "content_count", len(contents))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &cfg)
	if err != nil {
		return "", g.classify(ctx, err)
	}
	return g.extractText(ctx, resp)
}

func (g *Gemini) classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return statusError(g.Name(), apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code != 0 {
		return statusError(g.Name(), apiErrPtr.Code, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Provider: g.Name(), Kind: KindTimeout, Err: err}
	}
	return Normalize(g.Name(), err)
}

func (g *Gemini) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: ErrEmptyReply}
	}
	if resp.PromptFeedback != nil && isBlocked(resp.PromptFeedback.BlockReason) {
		g.log.WarnContext(ctx, "Gemini request blocked", "reason", resp.PromptFeedback.BlockReason)
		return "", &Error{
			Provider: g.Name(),
			Kind:     KindUnavailable,
			Err:      fmt.Errorf("blocked by safety filter: %v", resp.PromptFeedback.BlockReason),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: ErrEmptyReply}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &Error{Provider: g.Name(), Kind: KindUnavailable, Err: ErrEmptyReply}
	}
	return text, nil
}

func isBlocked(r genai.BlockedReason) bool {
	return r != "" && r != genai.BlockedReasonUnspecified
}
