package classifier

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/spec-kit/support-intake/internal/config"
)

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. Callers treat an empty API key as
// "no generator" rather than calling this.
func NewGemini(ctx context.Context, cfg config.ClassifierConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Generate sends the prompt as a single user turn and returns the reply text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}
