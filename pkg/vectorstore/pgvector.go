package vectorstore

import (
	"context"
	"fmt"

	"job-engine-be/internal/model"
	"job-engine-be/pkg/embedding"
	"job-engine-be/pkg/store"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PgVectorStore keeps chunks in Postgres and ranks them by cosine distance
type PgVectorStore struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

func NewPgVectorStore(db *gorm.DB, embedder embedding.EmbeddingProvider) *PgVectorStore {
	return &PgVectorStore{db: db, embedder: embedder}
}

// Migrate enables the vector extension and creates the chunk table
func (s *PgVectorStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	return s.db.WithContext(ctx).AutoMigrate(&model.KnowledgeChunk{})
}

func (s *PgVectorStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.KnowledgeChunk, 0, len(chunks))
	for _, c := range chunks {
		resp, err := s.embedder.Generate(ctx, c.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		models = append(models, &model.KnowledgeChunk{
			Id:             c.ID,
			Document:       c.Content,
			Metadata:       datatypes.JSONMap(c.Metadata),
			EmbeddingValue: pgvector.NewVector(resp.Embedding.Values),
			ChunkIndex:     c.Index,
		})
	}

	if err := s.db.WithContext(ctx).Create(models).Error; err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Retrieve(ctx context.Context, query string, k int) ([]store.Document, error) {
	if k <= 0 {
		k = DefaultK
	}

	resp, err := s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(resp.Embedding.Values)
	err = s.db.WithContext(ctx).
		Table(model.KnowledgeChunk{}.TableName()).
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	docs := make([]store.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, store.Document{
			ID:       r.Id,
			Content:  r.Document,
			Score:    float32(r.Similarity),
			Metadata: map[string]interface{}(r.Metadata),
		})
	}
	return docs, nil
}

func (s *PgVectorStore) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.KnowledgeChunk{}).Error
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error
	return int(count), err
}
