package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
	HuggingFaceModel   = "openai/gpt-oss-120b:groq"
)

var apiHTTPClient = &http.Client{Timeout: 60 * time.Second}

// HuggingFace talks to the OpenAI-compatible chat completions endpoint of the
// Hugging Face inference router.
type HuggingFace struct {
	BaseURL string
	Model   string
	Token   TokenFunc

	http *http.Client
}

func NewHuggingFace(token TokenFunc) *HuggingFace {
	return &HuggingFace{
		BaseURL: HuggingFaceBaseURL,
		Model:   HuggingFaceModel,
		Token:   token,
		http:    apiHTTPClient,
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) ChordProgression(ctx context.Context, req Request) (string, error) {
	req, err := req.validate()
	if err != nil {
		return "", err
	}
	text, err := h.complete(ctx, progressionPrompt(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (h *HuggingFace) Keywords(ctx context.Context, req Request) ([]string, error) {
	req, err := req.validate()
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Generate one word lyric ideas for a song in the key of %s in the style of %s. Only give the words and no explanation. there should only be one word per lyric idea and no more than five lyric ideas.", req.Key, req.Genre)
	text, err := h.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseKeywords(text), nil
}

func (h *HuggingFace) complete(ctx context.Context, prompt string) (string, error) {
	token := ""
	if h.Token != nil {
		t, err := h.Token()
		if err != nil {
			return "", err
		}
		token = strings.TrimSpace(t)
	}
	if token == "" {
		return "", ErrMissingToken
	}

	payload := map[string]any{
		"model": h.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	u := strings.TrimRight(h.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := h.http
	if client == nil {
		client = apiHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("huggingface api error: %d - %s", resp.StatusCode, string(body))
	}

	var data struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode huggingface response: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", fmt.Errorf("huggingface api returned no choices")
	}
	return data.Choices[0].Message.Content, nil
}
