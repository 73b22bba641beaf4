package nl2sql

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const providerGemini = "gemini"

// GeminiTranslator calls the Generative Language generateContent endpoint.
type GeminiTranslator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewGeminiTranslator(cfg ProviderConfig) (*GeminiTranslator, error) {
	baseURL, err := cleanBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiTranslator{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      newHTTPClient(cfg.Timeout),
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (t *GeminiTranslator) Translate(ctx context.Context, req Request) (result Result, err error) {
	started := time.Now()
	defer func() { observe(providerGemini, started, err) }()

	payload := map[string]any{
		"contents": []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(req.Schema, req.Question)}},
		}},
		"generationConfig": map[string]any{"temperature": t.temperature},
	}
	var parsed struct {
		Candidates []struct {
			Content geminiContent `json:"content"`
		} `json:"candidates"`
	}
	endpoint := t.baseURL + "/v1beta/models/" + url.PathEscape(t.model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": t.apiKey}
	if err := postJSON(ctx, t.client, endpoint, headers, payload, &parsed); err != nil {
		return Result{}, fmt.Errorf("generate content: %w", err)
	}

	var text strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	return Result{SQL: Sanitize(text.String()), Provider: providerGemini, Model: t.model}, nil
}
