package controller

import (
	"leadscout-be/internal/dto"
	"leadscout-be/internal/pkg/serverutils"
	"leadscout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILeadController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	CreateIssue(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type leadController struct {
	service service.ILeadService
}

func NewLeadController(service service.ILeadService) ILeadController {
	return &leadController{service: service}
}

func (c *leadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/leads")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/search", c.Search)
	h.Get("", c.List)
	h.Post("", c.Save)
	h.Patch(":id/status", c.UpdateStatus)
	h.Delete(":id", c.Delete)
	h.Post(":id/issue", c.CreateIssue)

	hist := r.Group("/history")
	hist.Use(serverutils.JwtMiddleware)
	hist.Get("", c.History)
}

func (c *leadController) Search(ctx *fiber.Ctx) error {
	var req dto.LeadSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search leads", res))
}

func (c *leadController) List(ctx *fiber.Ctx) error {
	var q dto.ListLeadsQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.List(ctx.Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list leads", res))
}

func (c *leadController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveLeadsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	saved, err := c.service.SaveLeads(ctx.Context(), req.Leads)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save leads", fiber.Map{"saved": saved}))
}

func (c *leadController) UpdateStatus(ctx *fiber.Ctx) error {
	var req dto.UpdateLeadStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpdateStatus(ctx.Context(), ctx.Params("id"), req.Status); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update lead status", nil))
}

func (c *leadController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete lead", nil))
}

func (c *leadController) CreateIssue(ctx *fiber.Ctx) error {
	res, err := c.service.CreateIssue(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create issue for lead", res))
}

func (c *leadController) History(ctx *fiber.Ctx) error {
	res, err := c.service.History(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get search history", res))
}
