package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/workflow"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

// workflowError maps the service's sentinel errors onto the stable error
// envelope. Unmatched errors fall through to SERVICE_ERROR.
func workflowError(c *fiber.Ctx, err error) error {
	var wrongStage *workflow.WrongStageError
	switch {
	case errors.As(err, &wrongStage):
		return response.WrongStage(c, err.Error(), string(wrongStage.Required))
	case errors.Is(err, workflow.ErrSessionNotFound):
		return response.Unauthorized(c, "Session not found or expired")
	case errors.Is(err, workflow.ErrUnknownScene):
		return response.NotFound(c, "Unknown scene")
	case errors.Is(err, workflow.ErrIndexOutOfRange):
		return response.NotFound(c, "Selection index out of range")
	case errors.Is(err, workflow.ErrBGMNotFound):
		return response.NotFound(c, "Background track not found")
	case errors.Is(err, workflow.ErrNoScenes):
		return response.ValidationError(c, "Script produced no scenes", nil)
	case errors.Is(err, workflow.ErrIncompleteSelection):
		return response.ValidationError(c, "Every scene needs at least one media item", nil)
	case errors.Is(err, workflow.ErrDownloadFailed):
		return response.DownloadFailed(c, err.Error())
	case errors.Is(err, workflow.ErrRenderFailed):
		return response.RenderFailed(c, err.Error())
	case errors.Is(err, workflow.ErrNoOutput):
		return response.WrongStage(c, "No rendered video available; render first", string(model.StageOptions))
	default:
		return response.ServiceError(c, err.Error())
	}
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
