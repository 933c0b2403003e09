package controller

import (
	"errors"

	"job-engine-be/internal/dto"
	"job-engine-be/internal/pkg/serverutils"
	"job-engine-be/internal/service"
	"job-engine-be/pkg/jobsearch"

	"github.com/gofiber/fiber/v2"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	SearchSummary(ctx *fiber.Ctx) error
	Details(ctx *fiber.Ctx) error
}

type jobController struct {
	service         service.IJobService
	defaultLanguage string
}

func NewJobController(service service.IJobService, defaultLanguage string) IJobController {
	return &jobController{service: service, defaultLanguage: defaultLanguage}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/jobs/v1")
	h.Get("/search", c.Search)
	h.Get("/search/summary", c.SearchSummary)
	h.Get("/:job_id", c.Details)
}

func (c *jobController) Search(ctx *fiber.Ctx) error {
	req := dto.JobSearchRequest{Language: c.defaultLanguage, NumPages: 1}
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		return jobError(ctx, "Erreur lors de la recherche d'emploi", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search jobs", res))
}

func (c *jobController) SearchSummary(ctx *fiber.Ctx) error {
	req := dto.JobSummaryRequest{Language: c.defaultLanguage, Limit: 5}
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SearchSummary(ctx.UserContext(), &req)
	if err != nil {
		return jobError(ctx, "Erreur lors de la recherche", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search job summaries", res))
}

func (c *jobController) Details(ctx *fiber.Ctx) error {
	res, err := c.service.Details(ctx.UserContext(), ctx.Params("job_id"))
	if err != nil {
		return jobError(ctx, "Erreur lors de la récupération des détails", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get job details", res))
}

func jobError(ctx *fiber.Ctx, prefix string, err error) error {
	code := fiber.StatusBadGateway
	switch {
	case errors.Is(err, jobsearch.ErrNoAPIKey):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, jobsearch.ErrEmptyQuery):
		code = fiber.StatusBadRequest
	case errors.Is(err, jobsearch.ErrJobNotFound):
		code = fiber.StatusNotFound
	}
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, prefix+": "+err.Error()))
}
