package service

import (
	"context"
	"encoding/json"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// IndexObserver counts the chunks written to the vector store
type IndexObserver interface {
	ChunksIndexed(n int)
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	store          vectorstore.VectorStore
	eventPublisher events.Publisher
	observer       IndexObserver
	logger         logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	store vectorstore.VectorStore,
	eventPublisher events.Publisher,
	observer IndexObserver,
	logger logger.ILogger,
) IConsumerService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		store:          store,
		eventPublisher: eventPublisher,
		observer:       observer,
		logger:         logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexChunksMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{"error": err})
		msg.Ack() // malformed payloads never succeed on retry
		return
	}

	chunks := make([]vectorstore.Chunk, 0, len(payload.Chunks))
	for _, c := range payload.Chunks {
		chunks = append(chunks, vectorstore.Chunk{
			ID:       c.Id,
			Content:  c.Content,
			Index:    c.Index,
			Metadata: c.Metadata,
		})
	}

	if err := cs.store.Add(ctx, chunks); err != nil {
		cs.logger.Error("CONSUMER", "Failed to index document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err,
		})
		// gochannel redelivers a nacked message immediately, which would spin while the embedding backend is down
		msg.Ack()
		return
	}

	if cs.observer != nil {
		cs.observer.ChunksIndexed(len(chunks))
	}
	cs.logger.Info("CONSUMER", "Document indexed", map[string]interface{}{
		"document_id": payload.DocumentId,
		"chunks":      len(chunks),
	})

	if err := cs.eventPublisher.Publish(ctx, events.NewKnowledgeIndexed(payload.DocumentId, len(chunks))); err != nil {
		cs.logger.Warn("CONSUMER", "Failed to publish indexed event", map[string]interface{}{"error": err.Error()})
	}
	msg.Ack()
}
