package dto

import (
	"job-engine-be/pkg/rag/composer"
)

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"session_id"`
}

type ChatResponse struct {
	Answer    string              `json:"answer"`
	Sources   []composer.Source   `json:"sources"`
	SessionId string              `json:"session_id"`
	Error     string              `json:"error,omitempty"`
	JobSearch *composer.JobSearch `json:"job_search,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatHistoryResponse struct {
	SessionId string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
	Count     int           `json:"count"`
}

type SessionInfo struct {
	SessionId    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
}

// ChatSocketMessage is the frame exchanged on the chat websocket
type ChatSocketMessage struct {
	Type      string        `json:"type"` // "message" | "answer" | "error"
	Message   string        `json:"message,omitempty"`
	SessionId string        `json:"session_id,omitempty"`
	Answer    *ChatResponse `json:"answer,omitempty"`
}
