package factory

import (
	"fmt"

	"job-engine-be/pkg/llm"
	"job-engine-be/pkg/llm/ollama"
	"job-engine-be/pkg/llm/openai"
)

// Settings selects and configures an LLM backend
type Settings struct {
	Provider    string // "ollama" | "openai"
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	defaults := llm.Options{Temperature: s.Temperature, MaxTokens: s.MaxTokens}

	switch s.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model, defaults), nil
	case "openai":
		return openai.NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model, defaults), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
