package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Image is a generated picture.
type Image struct {
	Bytes    []byte
	MIMEType string
}

// ImageGenerator creates images with an Imagen model through the Gemini API.
type ImageGenerator struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// NewImageGenerator creates the generator. A nil client or an empty model
// leaves it unconfigured.
func NewImageGenerator(client *genai.Client, model string, log *slog.Logger) *ImageGenerator {
	if log == nil {
		log = slog.Default()
	}
	return &ImageGenerator{client: client, model: model, log: log.With("component", "image")}
}

// Configured reports whether a client and a model are set.
func (g *ImageGenerator) Configured() bool {
	return g != nil && g.client != nil && g.model != ""
}

// Generate creates one image for prompt.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (Image, error) {
	if !g.Configured() {
		return Image{}, ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Image{}, ErrEmptyQuery
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, nil)
	if err != nil {
		g.log.WarnContext(ctx, "Image generation failed", "model", g.model, "error", err)
		return Image{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return Image{}, fmt.Errorf("%w: no image returned", ErrUnavailable)
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	g.log.DebugContext(ctx, "Image generated", "bytes", len(img.ImageBytes), "mime", mime)
	return Image{Bytes: img.ImageBytes, MIMEType: mime}, nil
}
