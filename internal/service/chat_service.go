package service

import (
	"context"
	"strings"
	"time"

	"job-engine-be/internal/constant"
	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/internal/repository/memory"
	"job-engine-be/pkg/events"
	"job-engine-be/pkg/rag/composer"
	"job-engine-be/pkg/store"
)

type IChatService interface {
	Chat(ctx context.Context, sessionId, message string) (*dto.ChatResponse, error)
	History(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error)
	ClearSession(ctx context.Context, sessionId string) error
	ListSessions(ctx context.Context) ([]dto.SessionInfo, error)
	ResetAll(ctx context.Context) error
	SessionCount() int
}

// ChatComposer runs one conversational turn
type ChatComposer interface {
	Chat(ctx context.Context, sessionID, message string) *composer.Result
}

// SessionManager is the part of the session store the HTTP layer manages directly
type SessionManager interface {
	History(sessionID string) []store.Turn
	Delete(sessionID string)
	ResetAll()
	Count() int
	List() []memory.SessionInfo
}

// ChatObserver records the latency of chat turns
type ChatObserver interface {
	ObserveChat(d time.Duration)
}

type chatService struct {
	composer  ChatComposer
	sessions  SessionManager
	publisher events.Publisher
	observer  ChatObserver
	logger    logger.ILogger
}

func NewChatService(
	composer ChatComposer,
	sessions SessionManager,
	publisher events.Publisher,
	observer ChatObserver,
	logger logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		composer:  composer,
		sessions:  sessions,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

func normalizeSessionId(sessionId string) string {
	sessionId = strings.TrimSpace(sessionId)
	if sessionId == "" {
		return constant.DefaultSessionID
	}
	return sessionId
}

func (s *chatService) Chat(ctx context.Context, sessionId, message string) (*dto.ChatResponse, error) {
	sessionId = normalizeSessionId(sessionId)
	start := time.Now()

	res := s.composer.Chat(ctx, sessionId, message)

	if s.observer != nil {
		s.observer.ObserveChat(time.Since(start))
	}

	if res.JobSearch != nil {
		evt := events.NewJobSearchPerformed(sessionId, res.JobSearch.Query, res.JobSearch.Country, res.JobSearch.Total, len(res.JobSearch.Jobs))
		s.publish(ctx, evt)
	}

	sources := res.Sources
	if sources == nil {
		sources = []composer.Source{}
	}

	return &dto.ChatResponse{
		Answer:    res.Answer,
		Sources:   sources,
		SessionId: sessionId,
		Error:     res.Error,
		JobSearch: res.JobSearch,
	}, nil
}

func (s *chatService) History(ctx context.Context, sessionId string) (*dto.ChatHistoryResponse, error) {
	sessionId = normalizeSessionId(sessionId)
	turns := s.sessions.History(sessionId)

	messages := make([]dto.ChatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, dto.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	return &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Messages:  messages,
		Count:     len(messages),
	}, nil
}

func (s *chatService) ClearSession(ctx context.Context, sessionId string) error {
	sessionId = normalizeSessionId(sessionId)
	s.sessions.Delete(sessionId)
	s.logger.Info("CHAT", "Session cleared", map[string]interface{}{"session_id": sessionId})
	s.publish(ctx, events.NewSessionCleared(sessionId))
	return nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]dto.SessionInfo, error) {
	infos := s.sessions.List()
	res := make([]dto.SessionInfo, 0, len(infos))
	for _, info := range infos {
		res = append(res, dto.SessionInfo{
			SessionId:    info.SessionID,
			MessageCount: info.MessageCount,
		})
	}
	return res, nil
}

func (s *chatService) ResetAll(ctx context.Context) error {
	count := s.sessions.Count()
	s.sessions.ResetAll()
	s.logger.Info("CHAT", "All sessions cleared", map[string]interface{}{"count": count})
	return nil
}

func (s *chatService) SessionCount() int {
	return s.sessions.Count()
}

// publish is best effort; the event bus never fails a chat request
func (s *chatService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("CHAT", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
