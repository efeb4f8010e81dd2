package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type RenderHandler struct {
	service   *service.WorkflowService
	validator *validator.Validate
}

func NewRenderHandler(svc *service.WorkflowService, v *validator.Validate) *RenderHandler {
	return &RenderHandler{
		service:   svc,
		validator: v,
	}
}

// ListBGM handles GET /api/render/bgm
func (h *RenderHandler) ListBGM(c *fiber.Ctx) error {
	tracks, err := h.service.ListBGM()
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, model.BGMListResponse{Tracks: tracks})
}

// Options handles PUT /api/render/options
func (h *RenderHandler) Options(c *fiber.Ctx) error {
	var req model.RenderOptions
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	state, err := h.service.SetOptions(c.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		return workflowError(c, err)
	}
	return response.OK(c, model.StageResponse{Stage: state.Stage})
}

// Render handles POST /api/render. The render is synchronous; the response
// arrives when the file is fully encoded.
func (h *RenderHandler) Render(c *fiber.Ctx) error {
	state, err := h.service.Render(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.RenderResponse{
		Video: *state.Output,
		Stage: state.Stage,
	})
}
