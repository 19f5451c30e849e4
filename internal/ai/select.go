package ai

import (
	"fmt"
	"strings"

	"github.com/Danielrabaneda/Salas/internal/ai/ollama"
	"github.com/Danielrabaneda/Salas/internal/ai/openai"
)

type Config struct {
	Provider      string
	Model         string
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaHost    string
}

// NewProvider picks the backend named by cfg.Provider. "none" selects Static,
// which keeps the game on its fallbacks.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL), nil
	case "ollama":
		return ollama.New(cfg.OllamaHost)
	case "none", "static":
		return Static{}, nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}
