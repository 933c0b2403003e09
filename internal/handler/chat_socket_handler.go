package handler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/logger"
	"job-engine-be/internal/service"
	internalWS "job-engine-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	FrameMessage = "message"
	FrameAnswer  = "answer"
	FrameError   = "error"
)

// ChatSocketHandler serves the chat over a websocket; every answer is fanned out to all
// connections of the session.
type ChatSocketHandler struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	turnTimeout time.Duration
	logger      logger.ILogger
}

func NewChatSocketHandler(chatService service.IChatService, hub *internalWS.Hub, turnTimeout time.Duration, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		chatService: chatService,
		hub:         hub,
		turnTimeout: turnTimeout,
		logger:      log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws/:session_id", h.ServeWs)
}

// ServeWs upgrades the request and runs the session's connection
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatSocketHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, h.HandleFrame)
		h.logger.Info("ChatSocketHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

// HandleFrame runs one chat turn for an inbound frame
func (h *ChatSocketHandler) HandleFrame(client *internalWS.Client, data []byte) {
	var frame dto.ChatSocketMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		client.Reply(errorFrame(client.SessionID, "invalid frame"))
		return
	}
	if frame.Type != FrameMessage || strings.TrimSpace(frame.Message) == "" {
		client.Reply(errorFrame(client.SessionID, "expected a non-empty \"message\" frame"))
		return
	}

	ctx := context.Background()
	if h.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.turnTimeout)
		defer cancel()
	}

	res, err := h.chatService.Chat(ctx, client.SessionID, frame.Message)
	if err != nil {
		h.logger.Error("ChatSocketHandler", "Chat turn failed", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err,
		})
		client.Reply(errorFrame(client.SessionID, err.Error()))
		return
	}

	out, _ := json.Marshal(dto.ChatSocketMessage{
		Type:      FrameAnswer,
		SessionId: client.SessionID,
		Message:   frame.Message,
		Answer:    res,
	})
	h.hub.Send(client.SessionID, out)
}

func errorFrame(sessionID, message string) []byte {
	out, _ := json.Marshal(dto.ChatSocketMessage{Type: FrameError, SessionId: sessionID, Message: message})
	return out
}
