package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type SessionHandler struct {
	service   *service.WorkflowService
	auth      *middleware.AuthMiddleware
	validator *validator.Validate
}

func NewSessionHandler(svc *service.WorkflowService, auth *middleware.AuthMiddleware, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		service:   svc,
		auth:      auth,
		validator: v,
	}
}

// Create handles POST /session
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	state, err := h.service.CreateSession(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	token, err := h.auth.GenerateToken(state.ID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, model.SessionResponse{
		SessionID: state.ID,
		Token:     token,
		Stage:     state.Stage,
	})
}

// Stage handles GET /session
func (h *SessionHandler) Stage(c *fiber.Ctx) error {
	state, err := h.service.GetState(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}
	return response.OK(c, model.StageResponse{Stage: state.Stage})
}

// Reset handles POST /session/reset
func (h *SessionHandler) Reset(c *fiber.Ctx) error {
	state, err := h.service.Reset(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}
	return response.OK(c, model.StageResponse{Stage: state.Stage})
}

// Back handles POST /session/back
func (h *SessionHandler) Back(c *fiber.Ctx) error {
	var req model.BackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	state, err := h.service.Back(c.Context(), middleware.GetSessionID(c), req.Stage)
	if err != nil {
		return workflowError(c, err)
	}
	return response.OK(c, model.StageResponse{Stage: state.Stage})
}
