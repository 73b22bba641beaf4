package nl2sql

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const providerOpenAI = "openai"

// OpenAITranslator talks to any OpenAI-compatible chat completions endpoint.
type OpenAITranslator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewOpenAITranslator(cfg ProviderConfig) (*OpenAITranslator, error) {
	baseURL, err := cleanBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-5"
	}
	return &OpenAITranslator{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      newHTTPClient(cfg.Timeout),
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, req Request) (result Result, err error) {
	started := time.Now()
	defer func() { observe(providerOpenAI, started, err) }()

	payload := map[string]any{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "user", "content": BuildPrompt(req.Schema, req.Question)},
		},
		"temperature": t.temperature,
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + t.apiKey}
	if err := postJSON(ctx, t.client, t.baseURL+"/v1/chat/completions", headers, payload, &parsed); err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}

	text := ""
	if len(parsed.Choices) > 0 {
		text = parsed.Choices[0].Message.Content
	}
	return Result{SQL: Sanitize(text), Provider: providerOpenAI, Model: t.model}, nil
}
