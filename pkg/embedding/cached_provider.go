package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 10000

// CachedProvider memoizes embeddings per task type and text
type CachedProvider struct {
	next  EmbeddingProvider
	cache *lru.Cache[string, []float32]
}

func NewCachedProvider(next EmbeddingProvider, size int) (*CachedProvider, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedProvider{next: next, cache: cache}, nil
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text
	if values, ok := p.cache.Get(key); ok {
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
	}

	resp, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, resp.Embedding.Values)
	return resp, nil
}

func (p *CachedProvider) Len() int {
	return p.cache.Len()
}
