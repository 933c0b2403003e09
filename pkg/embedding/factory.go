package embedding

import "fmt"

type Settings struct {
	Provider  string // "ollama" or "openai"
	Model     string
	BaseURL   string
	APIKey    string
	CacheSize int
}

// NewProvider builds the configured backend wrapped in an LRU cache
func NewProvider(s Settings) (EmbeddingProvider, error) {
	var base EmbeddingProvider
	switch s.Provider {
	case "", "ollama":
		base = NewOllamaProvider(s.BaseURL, s.Model)
	case "openai":
		base = NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", s.Provider)
	}
	return NewCachedProvider(base, s.CacheSize)
}
