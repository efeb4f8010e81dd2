package handler

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/middleware"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/service"
	"github.com/oldtraffrod/tiktok-videogenerator/pkg/response"
)

type OutputHandler struct {
	service *service.WorkflowService
}

func NewOutputHandler(svc *service.WorkflowService) *OutputHandler {
	return &OutputHandler{service: svc}
}

// Info handles GET /api/output
func (h *OutputHandler) Info(c *fiber.Ctx) error {
	video, err := h.service.Output(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}
	return response.OK(c, model.OutputResponse{
		FileName:  filepath.Base(video.FilePath),
		SizeBytes: video.SizeBytes,
	})
}

// File handles GET /api/output/file
func (h *OutputHandler) File(c *fiber.Ctx) error {
	video, err := h.service.Output(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return workflowError(c, err)
	}
	c.Set(fiber.HeaderContentType, "video/mp4")
	return c.Download(video.FilePath, filepath.Base(video.FilePath))
}
