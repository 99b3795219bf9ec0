package controller

import (
	"strconv"

	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/serverutils"
	"training-os-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStravaController interface {
	RegisterRoutes(r fiber.Router)
	Refresh(ctx *fiber.Ctx) error
	Backfill(ctx *fiber.Ctx) error
	Recent(ctx *fiber.Ctx) error
	Activity(ctx *fiber.Ctx) error
	SyncActivity(ctx *fiber.Ctx) error
	RefreshToken(ctx *fiber.Ctx) error
}

type stravaController struct {
	service service.ISyncService
}

func NewStravaController(service service.ISyncService) IStravaController {
	return &stravaController{service: service}
}

func (c *stravaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/strava")
	h.Post("/refresh", c.Refresh)
	h.Post("/backfill", c.Backfill)
	h.Get("/recent", c.Recent)
	h.Get("/activities/:id", c.Activity)
	h.Post("/activities/:id/sync", c.SyncActivity)
	h.Post("/token/refresh", c.RefreshToken)
}

// syncResponse renders a failed run with its partial tally so callers see what was merged.
func syncResponse(ctx *fiber.Ctx, message string, res *dto.SyncResultResponse, err error) error {
	if err == nil {
		return ctx.JSON(serverutils.SuccessResponse(message, res))
	}
	if res == nil {
		return err
	}
	code, reason := serverutils.StatusFor(err)
	if code == fiber.StatusInternalServerError {
		reason = err.Error()
	}
	return ctx.Status(code).JSON(serverutils.ErrorResponseWithDetails(code, reason, res))
}

// Refresh runs an incremental sync.
func (c *stravaController) Refresh(ctx *fiber.Ctx) error {
	res, err := c.service.SyncIncremental(ctx.UserContext())
	return syncResponse(ctx, "Incremental sync finished", res, err)
}

func (c *stravaController) Backfill(ctx *fiber.Ctx) error {
	var req dto.BackfillRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SyncBackfill(ctx.UserContext(), &req)
	return syncResponse(ctx, "Backfill finished", res, err)
}

func (c *stravaController) Recent(ctx *fiber.Ctx) error {
	var req dto.RecentActivitiesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RecentActivities(ctx.UserContext(), req.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Recent activities", res))
}

func parseActivityID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid activity id")
	}
	return id, nil
}

func (c *stravaController) Activity(ctx *fiber.Ctx) error {
	id, err := parseActivityID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Activity(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Strava activity", res))
}

// SyncActivity merges a single remote activity by id.
func (c *stravaController) SyncActivity(ctx *fiber.Ctx) error {
	id, err := parseActivityID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.SyncActivity(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Strava activity merged", res))
}

func (c *stravaController) RefreshToken(ctx *fiber.Ctx) error {
	res, err := c.service.RefreshToken(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Token refreshed", res))
}
