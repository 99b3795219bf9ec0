package controller

import (
	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/serverutils"
	"training-os-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDayNoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
}

type dayNoteController struct {
	service service.IDayNoteService
}

func NewDayNoteController(service service.IDayNoteService) IDayNoteController {
	return &dayNoteController{service: service}
}

func (c *dayNoteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/day-notes")
	h.Get("", c.List)
	h.Post("", c.Upsert)
}

func (c *dayNoteController) List(ctx *fiber.Ctx) error {
	var req dto.DateRangeRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list day notes", res))
}

func (c *dayNoteController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertDayNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Upsert(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save day note", res))
}
