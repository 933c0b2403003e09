package vectorstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"job-engine-be/pkg/embedding"
	"job-engine-be/pkg/store"

	chromem "github.com/philippgille/chromem-go"
)

const defaultCollection = "knowledge_base"

type ChromemConfig struct {
	PersistPath string // empty keeps the index in memory
	Collection  string
}

// ChromemStore is an embedded vector store, persisted to a gob file when PersistPath is set
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embedder   embedding.EmbeddingProvider
}

func NewChromemStore(config ChromemConfig, embedder embedding.EmbeddingProvider) (*ChromemStore, error) {
	if config.Collection == "" {
		config.Collection = defaultCollection
	}

	var (
		db  *chromem.DB
		err error
	)
	if config.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(config.PersistPath, "chromem.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	s := &ChromemStore{db: db, name: config.Collection, embedder: embedder}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ChromemStore) open() error {
	collection, err := s.db.GetOrCreateCollection(s.name, nil, s.queryEmbedding)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.collection = collection
	return nil
}

// queryEmbedding is the collection embedding func; documents carry precomputed vectors
func (s *ChromemStore) queryEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder.Generate(ctx, text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return resp.Embedding.Values, nil
}

func (s *ChromemStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		resp, err := s.embedder.Generate(ctx, c.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		metadata := stringMetadata(c.Metadata)
		metadata["chunk_index"] = strconv.Itoa(c.Index)
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  metadata,
			Embedding: resp.Embedding.Values,
		})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range docs {
		if err := s.collection.AddDocument(ctx, d); err != nil {
			return fmt.Errorf("add document %s: %w", d.ID, err)
		}
	}
	return nil
}

// Retrieve returns at most k documents; an empty collection yields no documents
func (s *ChromemStore) Retrieve(ctx context.Context, query string, k int) ([]store.Document, error) {
	if k <= 0 {
		k = DefaultK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem rejects nResults above the collection size
	if n := s.collection.Count(); n < k {
		k = n
	}
	if k == 0 {
		return []store.Document{}, nil
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]store.Document, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]interface{}, len(r.Metadata))
		for key, v := range r.Metadata {
			metadata[key] = v
		}
		docs = append(docs, store.Document{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: metadata,
		})
	}
	return docs, nil
}

// Reset drops the collection and recreates it empty
func (s *ChromemStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return s.open()
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}
