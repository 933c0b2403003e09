package controller

import (
	"job-engine-be/internal/dto"
	"job-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const AppVersion = "1.0.0"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	chatService      service.IChatService
	knowledgeService service.IKnowledgeService
	llmReady         bool
}

func NewHealthController(chatService service.IChatService, knowledgeService service.IKnowledgeService, llmReady bool) IHealthController {
	return &healthController{
		chatService:      chatService,
		knowledgeService: knowledgeService,
		llmReady:         llmReady,
	}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	r.Get("/health", c.Health)
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.RootResponse{
		Message: "Bienvenue sur l'API de l'assistant emploi",
		Version: AppVersion,
		Endpoints: map[string]string{
			"chat":      "/api/chat/v1",
			"knowledge": "/api/knowledge/v1",
			"jobs":      "/api/jobs/v1",
			"metrics":   "/metrics",
		},
	})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	chunks, err := c.knowledgeService.Count(ctx.UserContext())
	vectorReady := err == nil

	res := dto.HealthResponse{
		Status: "healthy",
		Services: map[string]bool{
			"llm":          c.llmReady,
			"memory":       true,
			"vector_store": vectorReady,
		},
		Sessions: c.chatService.SessionCount(),
		Chunks:   chunks,
	}

	if !c.llmReady || !vectorReady {
		res.Status = "unhealthy"
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return ctx.JSON(res)
}
