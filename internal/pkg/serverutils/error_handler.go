package serverutils

import (
	"errors"

	"training-os-be/internal/entity"
	"training-os-be/internal/service"
	"training-os-be/pkg/fitfile"
	"training-os-be/pkg/isoweek"
	"training-os-be/pkg/strava"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a service error to an HTTP status and a client-facing message.
func StatusFor(err error) (int, string) {
	var (
		fiberErr  *fiber.Error
		validErr  *ValidationError
		decodeErr *fitfile.DecodeError
		authErr   *strava.AuthError
		rateErr   *strava.RateLimitError
		apiErr    *strava.APIError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validErr):
		return fiber.StatusBadRequest, validErr.Error()
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrRemoteActivityNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrImportDirOutsideRoot),
		errors.Is(err, isoweek.ErrInvalidWeek),
		errors.Is(err, entity.ErrInvalidCandidate):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConcurrentMerge):
		return fiber.StatusConflict, err.Error()
	case errors.As(err, &decodeErr):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &rateErr):
		return fiber.StatusTooManyRequests, err.Error()
	case errors.As(err, &authErr):
		return fiber.StatusUnauthorized, err.Error()
	case errors.As(err, &apiErr):
		return fiber.StatusBadGateway, err.Error()
	case errors.Is(err, service.ErrSyncFirstPage):
		return fiber.StatusBadGateway, err.Error()
	}
	return fiber.StatusInternalServerError, "internal server error"
}

// ErrorHandlerMiddleware renders errors returned by handlers as ErrorBody JSON.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err)
		var validErr *ValidationError
		if errors.As(err, &validErr) {
			return ctx.Status(code).JSON(ErrorResponseWithDetails(code, "validation failed", validErr.Fields))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
