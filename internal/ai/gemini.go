package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const GeminiModel = "gemini-2.0-flash"

// Gemini generates suggestions with Google's Gemini API. The SDK client is
// created on first use.
type Gemini struct {
	APIKey  string
	Model   string
	BaseURL string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = GeminiModel
	}
	return &Gemini{APIKey: strings.TrimSpace(apiKey), Model: model}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) ChordProgression(ctx context.Context, req Request) (string, error) {
	req, err := req.validate()
	if err != nil {
		return "", err
	}
	text, err := g.generate(ctx, progressionPrompt(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gemini) Keywords(ctx context.Context, req Request) ([]string, error) {
	req, err := req.validate()
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Generate 4 to 6 keyword in the key of %s in the style of %s. Only give the the keywords and no explanation", req.Key, req.Genre)
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseKeywords(text), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) sdk(ctx context.Context) (*genai.Client, error) {
	if g.APIKey == "" {
		return nil, ErrMissingToken
	}
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:  g.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
		}
		g.client, g.clientErr = genai.NewClient(ctx, cfg)
		if g.clientErr != nil {
			g.clientErr = fmt.Errorf("create gemini client: %w", g.clientErr)
		}
	})
	return g.client, g.clientErr
}
