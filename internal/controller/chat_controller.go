package controller

import (
	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/serverutils"
	"job-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatWithSession(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ResetSessions(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Chat)
	h.Get("/sessions", c.ListSessions)
	h.Delete("/sessions", c.ResetSessions)
	h.Post("/session/:session_id", c.ChatWithSession)
	h.Get("/session/:session_id/history", c.History)
	h.Delete("/session/:session_id", c.DeleteSession)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), req.SessionId, req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

// ChatWithSession takes the session id from the path, overriding the body
func (c *chatController) ChatWithSession(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.SessionId = ctx.Params("session_id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), req.SessionId, req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	if err := c.service.ClearSession(ctx.UserContext(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session "+sessionId+" supprimée avec succès", nil))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *chatController) ResetSessions(ctx *fiber.Ctx) error {
	if err := c.service.ResetAll(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Toutes les sessions ont été supprimées", nil))
}
