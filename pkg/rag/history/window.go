// Package history bounds the chat history handed to the generation backend.
// The session store keeps every turn; only the prompt view is trimmed.
package history

import (
	"strings"
	"sync"

	"job-engine-be/pkg/llm"
	"job-engine-be/pkg/store"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		// cl100k_base may need a download; the estimate below covers offline hosts
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			encoding = enc
		}
	})
	return encoding
}

// CountTokens counts cl100k_base tokens, or estimates them when the encoding is unavailable
func CountTokens(text string) int {
	if enc := loadEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

// EstimateTokens returns max(runes/4, words), at least 1 for non-blank text
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// Window keeps the most recent turns that fit a token budget
type Window struct {
	MaxTokens int
	Counter   func(string) int
}

func NewWindow(maxTokens int) *Window {
	return &Window{MaxTokens: maxTokens, Counter: CountTokens}
}

// Select returns the newest turns within budget, oldest first.
// Turns are dropped by user/assistant pair so the result never starts with an orphan answer.
// A non-positive budget keeps everything.
func (w *Window) Select(turns []store.Turn) []store.Turn {
	if w == nil || w.MaxTokens <= 0 || len(turns) == 0 {
		return append([]store.Turn(nil), turns...)
	}

	counter := w.Counter
	if counter == nil {
		counter = CountTokens
	}

	used := 0
	start := len(turns)
	for start > 0 {
		step := 1
		if start >= 2 && turns[start-1].Role == store.RoleAssistant && turns[start-2].Role == store.RoleUser {
			step = 2
		}
		cost := 0
		for _, t := range turns[start-step : start] {
			cost += counter(t.Content)
		}
		if used+cost > w.MaxTokens {
			break
		}
		used += cost
		start -= step
	}

	return append([]store.Turn(nil), turns[start:]...)
}

// ToMessages converts turns to provider messages
func ToMessages(turns []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == store.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages
}
