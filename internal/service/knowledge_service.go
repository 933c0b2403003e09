package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/utils"
	"job-engine-be/pkg/vectorstore"

	"github.com/google/uuid"
)

var (
	ErrEmptyDocument   = errors.New("document has no text content")
	ErrUnsupportedFile = errors.New("unsupported file type, expected a UTF-8 text file")
)

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".html": true,
}

type IKnowledgeService interface {
	AddText(ctx context.Context, request *dto.UploadTextRequest) (*dto.UploadDocumentResponse, error)
	AddFile(ctx context.Context, filename string, content []byte) (*dto.UploadDocumentResponse, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type knowledgeService struct {
	store            vectorstore.VectorStore
	publisherService IPublisherService
	eventPublisher   events.Publisher
	chunkSize        int
	chunkOverlap     int
	logger           logger.ILogger
}

func NewKnowledgeService(
	store vectorstore.VectorStore,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	chunkSize, chunkOverlap int,
	logger logger.ILogger,
) IKnowledgeService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &knowledgeService{
		store:            store,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		logger:           logger,
	}
}

func (s *knowledgeService) AddText(ctx context.Context, request *dto.UploadTextRequest) (*dto.UploadDocumentResponse, error) {
	ids, err := s.enqueue(ctx, request.Text, request.Metadata)
	if err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Success:     true,
		DocumentIds: ids,
		Message:     fmt.Sprintf("Texte ajouté avec succès (%d chunks créés)", len(ids)),
	}, nil
}

func (s *knowledgeService) AddFile(ctx context.Context, filename string, content []byte) (*dto.UploadDocumentResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !textExtensions[ext] || !utf8.Valid(content) {
		return nil, ErrUnsupportedFile
	}

	ids, err := s.enqueue(ctx, string(content), map[string]interface{}{"source": filepath.Base(filename)})
	if err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Success:     true,
		DocumentIds: ids,
		Message:     fmt.Sprintf("Fichier %s ajouté avec succès", filepath.Base(filename)),
	}, nil
}

// enqueue splits the text, assigns the chunk ids and hands the chunks to the indexing consumer
func (s *knowledgeService) enqueue(ctx context.Context, text string, metadata map[string]interface{}) ([]string, error) {
	parts := utils.SplitText(text, s.chunkSize, s.chunkOverlap)
	if len(parts) == 0 {
		return nil, ErrEmptyDocument
	}

	documentId := uuid.NewString()
	msg := dto.PublishIndexChunksMessage{DocumentId: documentId}
	ids := make([]string, 0, len(parts))
	for i, part := range parts {
		chunkMetadata := map[string]interface{}{"document_id": documentId}
		for k, v := range metadata {
			chunkMetadata[k] = v
		}
		id := uuid.NewString()
		ids = append(ids, id)
		msg.Chunks = append(msg.Chunks, dto.IndexedChunk{
			Id:       id,
			Index:    i,
			Content:  part,
			Metadata: chunkMetadata,
		})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("queue document %s: %w", documentId, err)
	}

	s.logger.Info("KNOWLEDGE", "Document queued for indexing", map[string]interface{}{
		"document_id": documentId,
		"chunks":      len(ids),
	})
	return ids, nil
}

func (s *knowledgeService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset knowledge base: %w", err)
	}

	s.logger.Warn("KNOWLEDGE", "Knowledge base reset", nil)
	if err := s.eventPublisher.Publish(ctx, events.NewKnowledgeReset()); err != nil {
		s.logger.Warn("KNOWLEDGE", "Failed to publish reset event", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (s *knowledgeService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
