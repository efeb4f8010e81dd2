package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type MediaHandler struct {
	service   *service.WorkflowService
	validator *validator.Validate
}

func NewMediaHandler(svc *service.WorkflowService, v *validator.Validate) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		validator: v,
	}
}

// Search handles POST /api/media/search
func (h *MediaHandler) Search(c *fiber.Ctx) error {
	var req model.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	results, cached, err := h.service.Search(c.Context(), middleware.GetSessionID(c), req.SceneID, req.Keyword)
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.SearchResponse{
		SceneID: req.SceneID,
		Keyword: req.Keyword,
		Results: results,
		Cached:  cached,
	})
}

// Select handles POST /api/media/select
func (h *MediaHandler) Select(c *fiber.Ctx) error {
	var req model.SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	state, already, err := h.service.Select(c.Context(), middleware.GetSessionID(c), req.SceneID, req.Item)
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.SelectResponse{
		SceneID:         req.SceneID,
		AlreadySelected: already,
		Selected:        state.Selected[req.SceneID],
	})
}

// Remove handles DELETE /api/media/:sceneId/:index
func (h *MediaHandler) Remove(c *fiber.Ctx) error {
	sceneID := c.Params("sceneId")
	if sceneID == "" {
		return response.ValidationError(c, "Scene ID is required", nil)
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return response.ValidationError(c, "Index must be an integer", nil)
	}

	state, err := h.service.Remove(c.Context(), middleware.GetSessionID(c), sceneID, index)
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.SelectResponse{
		SceneID:  sceneID,
		Selected: state.Selected[sceneID],
	})
}

// Selected handles GET /api/media/selected
func (h *MediaHandler) Selected(c *fiber.Ctx) error {
	state, err := h.service.GetState(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}

	return response.OK(c, model.SelectedResponse{
		Selected: state.Selected,
		Complete: state.IsComplete(),
	})
}
