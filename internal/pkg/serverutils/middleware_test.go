package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Message string `json:"message" validate:"required"`
	Limit   int    `json:"limit" validate:"min=1,max=20"`
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	})
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		return ValidateRequest(sampleRequest{Limit: 50})
	})
	app.Get("/generic", func(ctx *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("done", map[string]int{"n": 1}))
	})

	tests := []struct {
		path        string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{path: "/fiber", wantStatus: 404, wantMessage: "job not found"},
		{path: "/validation", wantStatus: 422, wantMessage: "Message is required; Limit must satisfy max=20"},
		{path: "/generic", wantStatus: 500, wantMessage: "boom"},
		{path: "/ok", wantStatus: 200, wantSuccess: true, wantMessage: "done"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var out Response[json.RawMessage]
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantSuccess, out.Success)
			assert.Equal(t, tt.wantMessage, out.Message)
		})
	}
}
