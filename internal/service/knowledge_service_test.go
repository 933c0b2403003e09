package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/store"
	"job-engine-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryVectorStore struct {
	mu     sync.Mutex
	chunks []vectorstore.Chunk
	resets int
}

func (m *memoryVectorStore) Add(ctx context.Context, chunks []vectorstore.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memoryVectorStore) Retrieve(ctx context.Context, query string, k int) ([]store.Document, error) {
	return nil, nil
}

func (m *memoryVectorStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.resets++
	return nil
}

func (m *memoryVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

type chunkCounter struct {
	mu sync.Mutex
	n  int
}

func (c *chunkCounter) ChunksIndexed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += n
}

func (c *chunkCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

const testTopic = "KNOWLEDGE_INGEST"

func newKnowledgePipeline(t *testing.T) (IKnowledgeService, *memoryVectorStore, *recordingPublisher, *chunkCounter) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	vs := &memoryVectorStore{}
	pub := &recordingPublisher{}
	counter := &chunkCounter{}
	log := logger.NewNopLogger()

	consumer := NewConsumerService(pubSub, testTopic, vs, pub, counter, log)
	require.NoError(t, consumer.Consume(ctx))

	svc := NewKnowledgeService(vs, NewPublisherService(testTopic, pubSub), pub, 100, 20, log)
	return svc, vs, pub, counter
}

func TestKnowledgeService_AddTextIndexesChunks(t *testing.T) {
	svc, vs, pub, counter := newKnowledgePipeline(t)
	text := strings.Repeat("Le télétravail est possible deux jours par semaine. ", 8)

	res, err := svc.AddText(context.Background(), &dto.UploadTextRequest{
		Text:     text,
		Metadata: map[string]interface{}{"source": "faq"},
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Greater(t, len(res.DocumentIds), 1)

	require.Eventually(t, func() bool {
		n, _ := svc.Count(context.Background())
		return n == len(res.DocumentIds)
	}, 2*time.Second, 10*time.Millisecond)

	vs.mu.Lock()
	first := vs.chunks[0]
	vs.mu.Unlock()
	assert.Equal(t, res.DocumentIds[0], first.ID)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "faq", first.Metadata["source"])
	assert.NotEmpty(t, first.Metadata["document_id"])

	require.Eventually(t, func() bool {
		return counter.total() == len(res.DocumentIds) && len(pub.types()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, events.TypeKnowledgeIndexed, pub.types()[0])
}

func TestKnowledgeService_AddFile(t *testing.T) {
	svc, _, _, _ := newKnowledgePipeline(t)
	ctx := context.Background()

	res, err := svc.AddFile(ctx, "guide.md", []byte("# Guide\n\nPostuler en ligne."))
	require.NoError(t, err)
	assert.Equal(t, "Fichier guide.md ajouté avec succès", res.Message)
	assert.Len(t, res.DocumentIds, 1)

	_, err = svc.AddFile(ctx, "cv.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = svc.AddFile(ctx, "empty.txt", []byte("   \n "))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestKnowledgeService_Reset(t *testing.T) {
	svc, vs, pub, _ := newKnowledgePipeline(t)

	require.NoError(t, svc.Reset(context.Background()))
	assert.Equal(t, 1, vs.resets)
	assert.Equal(t, []string{events.TypeKnowledgeReset}, pub.types())
}
