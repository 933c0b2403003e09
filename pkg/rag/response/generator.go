package response

import (
	"context"
	"fmt"

	"job-engine-be/internal/pkg/logger"
	"job-engine-be/pkg/llm"
	"job-engine-be/pkg/rag/history"
	"job-engine-be/pkg/rag/prompt"
	"job-engine-be/pkg/store"
)

// Answer is a generated reply with the documents it was grounded on
type Answer struct {
	Text    string
	Sources []store.Document
}

// Generator answers a question from retrieved documents and the chat history
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, logger logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate sends the history followed by the filled QA prompt.
// Backend errors are returned unchanged so the caller can pick its fallback.
func (g *Generator) Generate(ctx context.Context, question string, turns []store.Turn, docs []store.Document) (*Answer, error) {
	messages := history.ToMessages(turns)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.BuildQAPrompt(question, docs),
	})

	text, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	g.logger.Debug("GENERATION", "Answer generated", map[string]interface{}{
		"documents":     len(docs),
		"history_turns": len(turns),
		"answer_length": len(text),
	})

	return &Answer{Text: text, Sources: docs}, nil
}
