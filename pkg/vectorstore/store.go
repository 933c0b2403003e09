// Package vectorstore indexes knowledge chunks and retrieves the closest ones for a query.
package vectorstore

import (
	"context"
	"fmt"

	"job-engine-be/pkg/store"
)

const DefaultK = 4

// Chunk is a piece of text ready to be embedded and indexed
type Chunk struct {
	ID       string
	Content  string
	Index    int
	Metadata map[string]interface{}
}

// VectorStore is implemented by the chromem and pgvector backends
type VectorStore interface {
	Add(ctx context.Context, chunks []Chunk) error
	Retrieve(ctx context.Context, query string, k int) ([]store.Document, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// stringMetadata flattens metadata values for backends that only store strings
func stringMetadata(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
