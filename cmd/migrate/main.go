package main

import (
	"context"
	"log"
	"time"

	"job-engine-be/internal/config"
	"job-engine-be/pkg/database"
	"job-engine-be/pkg/vectorstore"
)

// Prepares the postgres database used when VECTOR_BACKEND=pgvector
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Println("Creating the vector extension and the knowledge_chunks table...")
	if err := vectorstore.NewPgVectorStore(db, nil).Migrate(ctx); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_document ON knowledge_chunks ((metadata->>'document_id'));`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
