package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nlsql/nlsql/internal/config"
)

type Request struct {
	Question string `json:"question"`
	Schema   string `json:"schema"`
}

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// NewTranslator builds the provider named by cfg. The API key is not
// checked here; a missing key surfaces on the first call.
func NewTranslator(cfg config.AIConfig) (Translator, error) {
	providerCfg := ProviderConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", config.ProviderGemini:
		return NewGeminiTranslator(providerCfg)
	case config.ProviderOpenAI:
		return NewOpenAITranslator(providerCfg)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// ReadSchema returns the schema document at path. A missing document yields
// a placeholder so the question can still be sent.
func ReadSchema(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("Error: %s not found.", filepath.Base(path))
		}
		return fmt.Sprintf("Error: %s could not be read.", filepath.Base(path))
	}
	return string(data)
}

func BuildPrompt(schema, question string) string {
	return "Schema: " + schema + "\nRequest: " + question + "\nReturn only SQL."
}

// Sanitize drops markdown code fences from a completion.
func Sanitize(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```sql", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
