package controller

import (
	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/serverutils"
	"training-os-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PlanController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
}

type planController struct {
	planService service.PlanService
}

func NewPlanController(planService service.PlanService) PlanController {
	return &planController{planService: planService}
}

func (c *planController) RegisterRoutes(r fiber.Router) {
	plans := r.Group("/plans")
	plans.Get("/:year/:week", c.Get)
	plans.Post("", c.Upsert)
}

// yearWeek reads the :year and :week path params.
func yearWeek(ctx *fiber.Ctx) (int, int, error) {
	year, err := ctx.ParamsInt("year")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid year")
	}
	week, err := ctx.ParamsInt("week")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid week")
	}
	return year, week, nil
}

func (c *planController) Get(ctx *fiber.Ctx) error {
	year, week, err := yearWeek(ctx)
	if err != nil {
		return err
	}
	plan, err := c.planService.Get(ctx.UserContext(), year, week)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}

func (c *planController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertWeeklyPlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	plan, err := c.planService.Upsert(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan saved", plan))
}
