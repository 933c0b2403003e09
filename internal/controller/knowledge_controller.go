package controller

import (
	"errors"
	"io"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/serverutils"
	"job-engine-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	UploadText(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service service.IKnowledgeService
}

func NewKnowledgeController(service service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{service: service}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Post("/upload", c.Upload)
	h.Post("/upload-text", c.UploadText)
	h.Delete("/reset", c.Reset)
}

// Upload accepts either a multipart "file" or a "text" form field
func (c *knowledgeController) Upload(ctx *fiber.Ctx) error {
	if fileHeader, err := ctx.FormFile("file"); err == nil && fileHeader.Filename != "" {
		file, err := fileHeader.Open()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to open file"))
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read file"))
		}

		res, err := c.service.AddFile(ctx.UserContext(), fileHeader.Filename, content)
		if err != nil {
			return uploadError(ctx, err)
		}
		return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
	}

	text := ctx.FormValue("text")
	if text == "" {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(400, "Vous devez fournir soit un fichier, soit du texte"))
	}

	res, err := c.service.AddText(ctx.UserContext(), &dto.UploadTextRequest{Text: text})
	if err != nil {
		return uploadError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *knowledgeController) UploadText(ctx *fiber.Ctx) error {
	var req dto.UploadTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Le champ 'text' est requis"))
	}

	res, err := c.service.AddText(ctx.UserContext(), &req)
	if err != nil {
		return uploadError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *knowledgeController) Reset(ctx *fiber.Ctx) error {
	if err := c.service.Reset(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Base de connaissances réinitialisée avec succès", nil))
}

func uploadError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrEmptyDocument) || errors.Is(err, service.ErrUnsupportedFile) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Status(fiber.StatusInternalServerError).
		JSON(serverutils.ErrorResponse(500, "Erreur lors de l'upload du document: "+err.Error()))
}
