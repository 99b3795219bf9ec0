package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"training-os-be/internal/entity"
	"training-os-be/internal/service"
	"training-os-be/pkg/fitfile"
	"training-os-be/pkg/isoweek"
	"training-os-be/pkg/strava"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"fiber error", fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot},
		{"validation", &ValidationError{Fields: map[string]string{"Date": "required"}}, fiber.StatusBadRequest},
		{"session missing", service.ErrSessionNotFound, fiber.StatusNotFound},
		{"plan missing", service.ErrPlanNotFound, fiber.StatusNotFound},
		{"import dir outside root", service.ErrImportDirOutsideRoot, fiber.StatusBadRequest},
		{"remote activity missing", fmt.Errorf("%w: 7", service.ErrRemoteActivityNotFound), fiber.StatusNotFound},
		{"bad date", fmt.Errorf("%w: %q", service.ErrInvalidDate, "x"), fiber.StatusBadRequest},
		{"bad week", fmt.Errorf("%w: week 54", isoweek.ErrInvalidWeek), fiber.StatusBadRequest},
		{"bad candidate", fmt.Errorf("%w: missing date", entity.ErrInvalidCandidate), fiber.StatusBadRequest},
		{"concurrent merge", fmt.Errorf("k: %w", service.ErrConcurrentMerge), fiber.StatusConflict},
		{"decode", &fitfile.DecodeError{Path: "a.fit", Primary: errors.New("eof")}, fiber.StatusUnprocessableEntity},
		{"rate limited", &strava.RateLimitError{Attempts: 3}, fiber.StatusTooManyRequests},
		{"auth", &strava.AuthError{Err: errors.New("revoked")}, fiber.StatusUnauthorized},
		{"upstream", &strava.APIError{StatusCode: 500}, fiber.StatusBadGateway},
		{"first page", fmt.Errorf("%w: %w", service.ErrSyncFirstPage, errors.New("timeout")), fiber.StatusBadGateway},
		{"unknown", errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := StatusFor(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestStatusForHidesInternalErrors(t *testing.T) {
	_, msg := StatusFor(errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", msg)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error { return service.ErrSessionNotFound })
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return ValidateRequest(&struct {
			Date string `validate:"required,datetime=2006-01-02"`
		}{Date: "01/05/2024"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "session not found", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var detailed struct {
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detailed))
	assert.Equal(t, "validation failed", detailed.Message)
	assert.Equal(t, "datetime=2006-01-02", detailed.Details["Date"])
}
