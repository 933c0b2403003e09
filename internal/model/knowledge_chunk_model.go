package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KnowledgeChunk is one indexed piece of an uploaded document.
// The vector column is unsized so any embedding model can be used.
type KnowledgeChunk struct {
	Id             string            `gorm:"type:uuid;primaryKey"`
	Document       string            `gorm:"type:text"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector"`
	ChunkIndex     int               `gorm:"default:0"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
