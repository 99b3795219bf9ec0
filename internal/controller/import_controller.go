package controller

import (
	"os"
	"path/filepath"

	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/serverutils"
	"training-os-be/internal/service"
	"training-os-be/pkg/fitfile"

	"github.com/gofiber/fiber/v2"
)

type IImportController interface {
	RegisterRoutes(r fiber.Router)
	UploadFile(ctx *fiber.Ctx) error
	ImportDir(ctx *fiber.Ctx) error
}

type importController struct {
	service service.IImportService
}

func NewImportController(service service.IImportService) IImportController {
	return &importController{service: service}
}

func (c *importController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/import")
	h.Post("/fit", c.UploadFile)
	h.Post("/dir", c.ImportDir)
}

// UploadFile imports a single multipart "file" upload. The file is decoded from a
// temporary copy that keeps the original name for the session notes.
func (c *importController) UploadFile(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}
	name := filepath.Base(header.Filename)
	if !fitfile.Supported(name) {
		return fiber.NewError(fiber.StatusBadRequest, "only .fit and .gpx files are supported")
	}

	tmpDir, err := os.MkdirTemp("", "training-os-upload-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, name)
	if err := ctx.SaveFile(header, path); err != nil {
		return err
	}

	res, err := c.service.ImportFile(ctx.UserContext(), path)
	if err != nil {
		return err
	}
	if res.Status == service.ImportStatusFailed {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(
			serverutils.ErrorResponseWithDetails(fiber.StatusUnprocessableEntity, res.Reason, res))
	}
	return ctx.JSON(serverutils.SuccessResponse("File imported", res))
}

// ImportDir imports a directory under the configured import root, defaulting to the root.
func (c *importController) ImportDir(ctx *fiber.Ctx) error {
	var req dto.ImportDirRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	dir, err := c.service.ResolveDir(req.Dir)
	if err != nil {
		return err
	}
	res, err := c.service.ImportDir(ctx.UserContext(), dir)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Directory imported", res))
}
