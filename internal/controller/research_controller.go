package controller

import (
	"leadscout-be/internal/dto"
	"leadscout-be/internal/pkg/serverutils"
	"leadscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	Enqueue(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
}

type researchController struct {
	service service.IResearchService
}

func NewResearchController(service service.IResearchService) IResearchController {
	return &researchController{service: service}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Enqueue)
	h.Post("/sync", c.Sync)
	h.Get(":id", c.Status)
}

func (c *researchController) Enqueue(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Enqueue(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponse("Research enqueued", res))
}

func (c *researchController) Status(ctx *fiber.Ctx) error {
	res, err := c.service.GetJob(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "research job not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get research status", res))
}

func (c *researchController) Sync(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	report, err := c.service.ResearchSync(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Research completed", dto.SyncResearchResponse{Report: report}))
}
