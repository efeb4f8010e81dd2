package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type ScriptHandler struct {
	service   *service.WorkflowService
	validator *validator.Validate
}

func NewScriptHandler(svc *service.WorkflowService, v *validator.Validate) *ScriptHandler {
	return &ScriptHandler{
		service:   svc,
		validator: v,
	}
}

// Analyze handles POST /api/script/analyze
func (h *ScriptHandler) Analyze(c *fiber.Ctx) error {
	var req model.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	state, err := h.service.Analyze(c.Context(), middleware.GetSessionID(c), req.Script)
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.AnalyzeResponse{
		Scenes: state.Scenes,
		Stage:  state.Stage,
	})
}
