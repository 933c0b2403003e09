package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Jobs     JobsConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	PromptLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event publishing
	RedisURL           string // empty keeps the job search cache in memory
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string // only used by the pgvector backend
}

type APIKeys struct {
	OpenAI   string
	RapidAPI string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
	LLMBaseURL        string
	Temperature       float64
	MaxTokens         int
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingCache    int
	Timeout           time.Duration
}

type RagConfig struct {
	VectorBackend      string // "chromem" or "pgvector"
	PersistDirectory   string
	CollectionName     string
	RetrieverK         int
	ChunkSize          int
	ChunkOverlap       int
	HistoryTokenBudget int
	RetrievalTimeout   time.Duration
	ClassifierTimeout  time.Duration
}

type JobsConfig struct {
	Host            string
	BaseURL         string
	DefaultLanguage string
	Timeout         time.Duration
	CacheTTL        time.Duration
}

type SessionConfig struct {
	TTL time.Duration // 0 keeps sessions until deleted
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PromptLogFilePath:  getEnv("PROMPT_LOG_FILE_PATH", "logs/prompts.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			IngestTopic:        getEnv("KNOWLEDGE_INGEST_TOPIC_NAME", "KNOWLEDGE_INGEST"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:   getEnv("OPENAI_API_KEY", ""),
			RapidAPI: getEnv("RAPIDAPI_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 1000),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingCache:    getEnvAsInt("EMBEDDING_CACHE_SIZE", 10000),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Rag: RagConfig{
			VectorBackend:      getEnv("VECTOR_BACKEND", "chromem"),
			PersistDirectory:   getEnv("CHROMA_PERSIST_DIRECTORY", "./chroma_db"),
			CollectionName:     getEnv("COLLECTION_NAME", "knowledge_base"),
			RetrieverK:         getEnvAsInt("RETRIEVER_K", 4),
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 200),
			HistoryTokenBudget: getEnvAsInt("HISTORY_TOKEN_BUDGET", 2000),
			RetrievalTimeout:   getEnvAsDuration("RETRIEVAL_TIMEOUT", 10*time.Second),
			ClassifierTimeout:  getEnvAsDuration("CLASSIFIER_TIMEOUT", 15*time.Second),
		},
		Jobs: JobsConfig{
			Host:            getEnv("RAPIDAPI_HOST", "jsearch.p.rapidapi.com"),
			BaseURL:         getEnv("JSEARCH_BASE_URL", "https://jsearch.p.rapidapi.com"),
			DefaultLanguage: getEnv("JOB_SEARCH_LANGUAGE", "fr"),
			Timeout:         getEnvAsDuration("JOB_SEARCH_TIMEOUT", 8*time.Second),
			CacheTTL:        getEnvAsDuration("JOB_SEARCH_CACHE_TTL", 15*time.Minute),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
