package controller

import (
	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/serverutils"
	"training-os-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISummaryController interface {
	RegisterRoutes(r fiber.Router)
	Week(ctx *fiber.Ctx) error
	WeekOfDate(ctx *fiber.Ctx) error
	Trend(ctx *fiber.Ctx) error
}

type summaryController struct {
	service service.ISummaryService
}

func NewSummaryController(service service.ISummaryService) ISummaryController {
	return &summaryController{service: service}
}

func (c *summaryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/summary")
	h.Get("/week/:year/:week", c.Week)
	h.Get("/date/:date", c.WeekOfDate)
	h.Get("/trend", c.Trend)
}

func (c *summaryController) Week(ctx *fiber.Ctx) error {
	year, week, err := yearWeek(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.WeeklySummary(ctx.UserContext(), year, week)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Weekly summary", res))
}

func (c *summaryController) WeekOfDate(ctx *fiber.Ctx) error {
	res, err := c.service.WeeklySummaryForDate(ctx.UserContext(), ctx.Params("date"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Weekly summary", res))
}

func (c *summaryController) Trend(ctx *fiber.Ctx) error {
	var req dto.WeeklyTrendRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.WeeklyTrend(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Weekly trend", res))
}
