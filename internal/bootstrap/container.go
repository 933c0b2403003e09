package bootstrap

import (
	"context"
	"fmt"
	"time"

	"job-engine-be/internal/config"
	"job-engine-be/internal/controller"
	"job-engine-be/internal/handler"
	"job-engine-be/internal/metrics"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/internal/repository/memory"
	"job-engine-be/internal/service"
	"job-engine-be/internal/websocket"
	"job-engine-be/pkg/database"
	"job-engine-be/pkg/embedding"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/jobsearch"
	"job-engine-be/pkg/llm/factory"
	"job-engine-be/pkg/rag/composer"
	"job-engine-be/pkg/rag/history"
	"job-engine-be/pkg/rag/intent"
	"job-engine-be/pkg/rag/jobmemory"
	"job-engine-be/pkg/rag/response"
	"job-engine-be/pkg/vectorstore"

	pktNats "job-engine-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	JobController       controller.IJobController
	KnowledgeController controller.IKnowledgeController
	HealthController    controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatSocketHandler *handler.ChatSocketHandler
	WebSocketHub      *websocket.Hub

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	closers []func()
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}
	ctx := context.Background()

	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. AI Providers
	embeddingProvider, err := embedding.NewProvider(embedding.Settings{
		Provider:  cfg.Ai.EmbeddingProvider,
		Model:     cfg.Ai.EmbeddingModel,
		BaseURL:   cfg.Ai.EmbeddingBaseURL,
		APIKey:    cfg.Keys.OpenAI,
		CacheSize: cfg.Ai.EmbeddingCache,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		BaseURL:     cfg.Ai.LLMBaseURL,
		APIKey:      cfg.Keys.OpenAI,
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	llmReady := true
	if pinger, ok := llmProvider.(interface{ Ping(context.Context) error }); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := pinger.Ping(pingCtx); err != nil {
			sysLogger.Warn("BOOTSTRAP", "LLM backend check failed, answers will fall back", map[string]interface{}{"error": err.Error()})
			llmReady = false
		}
		cancel()
	}

	// 3. Knowledge Base
	vectorStore, err := newVectorStore(ctx, cfg, embeddingProvider)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Vector store ready", map[string]interface{}{"backend": cfg.Rag.VectorBackend})

	// 4. Infrastructure
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	var jobCache jobsearch.Cache = jobsearch.NewMemoryCache(cfg.Jobs.CacheTTL)
	if cfg.App.RedisURL != "" {
		rdb = newRedisClient(ctx, cfg.App.RedisURL, sysLogger)
		if rdb != nil {
			jobCache = jobsearch.NewRedisCache(rdb)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// 5. Conversation Core
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL)
	jobMemory := jobmemory.NewMemory(sessionRepo)
	jobClient := jobsearch.NewClient(jobsearch.Config{
		APIKey:          cfg.Keys.RapidAPI,
		Host:            cfg.Jobs.Host,
		BaseURL:         cfg.Jobs.BaseURL,
		DefaultLanguage: cfg.Jobs.DefaultLanguage,
		Timeout:         cfg.Jobs.Timeout,
		CacheTTL:        cfg.Jobs.CacheTTL,
	}, jobCache, sysLogger)
	if cfg.Keys.RapidAPI == "" {
		sysLogger.Warn("BOOTSTRAP", "RAPIDAPI_KEY is empty, job searches will report unavailable", nil)
	}

	promptLogger := logger.NewIsolatedLogger(cfg.App.PromptLogFilePath)
	m := metrics.New()
	m.TrackSessions(sessionRepo.Count)
	c.Metrics = m

	chatComposer := composer.NewComposer(
		sessionRepo,
		jobMemory,
		intent.NewClassifier(llmProvider, sysLogger),
		response.NewGenerator(llmProvider, promptLogger),
		llmProvider,
		sysLogger,
		composer.Config{
			RetrieverK:      cfg.Rag.RetrieverK,
			DefaultLanguage: cfg.Jobs.DefaultLanguage,
			Timeouts: composer.Timeouts{
				Classify:   cfg.Rag.ClassifierTimeout,
				JobSearch:  cfg.Jobs.Timeout,
				Retrieval:  cfg.Rag.RetrievalTimeout,
				Generation: cfg.Ai.Timeout,
			},
		},
		composer.WithJobSearcher(jobClient),
		composer.WithRetriever(vectorStore),
		composer.WithHistoryWindow(history.NewWindow(cfg.Rag.HistoryTokenBudget)),
		composer.WithObserver(m),
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.IngestTopic, vectorStore, eventPublisher, m, sysLogger)

	chatService := service.NewChatService(chatComposer, sessionRepo, eventPublisher, m, sysLogger)
	jobService := service.NewJobService(jobClient)
	knowledgeService := service.NewKnowledgeService(
		vectorStore,
		publisherService,
		eventPublisher,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		sysLogger,
	)

	// 7. WebSocket Hub
	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)
	turnTimeout := cfg.Ai.Timeout*2 + cfg.Jobs.Timeout + cfg.Rag.ClassifierTimeout
	c.ChatSocketHandler = handler.NewChatSocketHandler(chatService, c.WebSocketHub, turnTimeout, sysLogger)

	// 8. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.JobController = controller.NewJobController(jobService, cfg.Jobs.DefaultLanguage)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService)
	c.HealthController = controller.NewHealthController(chatService, knowledgeService, llmReady)

	c.closers = append(c.closers, func() { _ = promptLogger.Sync() })
	return c, nil
}

func newVectorStore(ctx context.Context, cfg *config.Config, embedder embedding.EmbeddingProvider) (vectorstore.VectorStore, error) {
	switch cfg.Rag.VectorBackend {
	case "", "chromem":
		return vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			PersistPath: cfg.Rag.PersistDirectory,
			Collection:  cfg.Rag.CollectionName,
		}, embedder)
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := vectorstore.NewPgVectorStore(db, embedder)
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := store.Migrate(migrateCtx); err != nil {
			return nil, fmt.Errorf("migrate knowledge chunks: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported vector backend %q", cfg.Rag.VectorBackend)
	}
}

// newRedisClient returns nil when Redis cannot be reached
func newRedisClient(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as an address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis, falling back to in-memory cache", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Start launches the background workers
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
