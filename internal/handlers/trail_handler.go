package handlers

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/services"
	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

type trailApplicationService interface {
	ListTrails(ctx context.Context, category string) ([]models.Trail, error)
	GetTrail(ctx context.Context, id int64) (*models.Trail, error)
	CreateTrail(ctx context.Context, input services.TrailInput, image *services.ImageUpload) (*models.Trail, error)
	UpdateTrail(ctx context.Context, id int64, patch services.TrailPatch, image *services.ImageUpload) (*models.Trail, error)
	DeleteTrail(ctx context.Context, id int64) error
}

type imageLocator interface {
	Path(filename string) (string, error)
}

type TrailHandler struct {
	service trailApplicationService
	images  imageLocator
	log     zerolog.Logger
}

func NewTrailHandler(service trailApplicationService, images imageLocator, log zerolog.Logger) *TrailHandler {
	return &TrailHandler{service: service, images: images, log: log}
}

func (h *TrailHandler) ListTrails(c *fiber.Ctx) error {
	trails, err := h.service.ListTrails(c.Context(), c.Query("category"))
	if err != nil {
		return h.mapTrailError(c, err)
	}
	return utils.RespondList(c, trails)
}

func (h *TrailHandler) GetTrail(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Trail not found")
	}

	trail, err := h.service.GetTrail(c.Context(), id)
	if err != nil {
		return h.mapTrailError(c, err)
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Data: trail})
}

func (h *TrailHandler) CreateTrail(c *fiber.Ctx) error {
	image, closeImage, err := openImage(c)
	if err != nil {
		return h.mapTrailError(c, err)
	}
	defer closeImage()
	if image == nil {
		return utils.RespondFail(c, fiber.StatusBadRequest, "Image is required")
	}

	trail, err := h.service.CreateTrail(c.Context(), services.TrailInput{
		Title:       c.FormValue("title"),
		Category:    c.FormValue("category"),
		Duration:    c.FormValue("duration"),
		Intensity:   c.FormValue("intensity"),
		Description: c.FormValue("description"),
	}, image)
	if err != nil {
		return h.mapTrailError(c, err)
	}

	return utils.RespondOK(c, fiber.StatusCreated, utils.Envelope{
		Message: "Trail created successfully",
		Data:    trail,
	})
}

func (h *TrailHandler) UpdateTrail(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Trail not found")
	}

	image, closeImage, err := openImage(c)
	if err != nil {
		return h.mapTrailError(c, err)
	}
	defer closeImage()

	trail, err := h.service.UpdateTrail(c.Context(), id, services.TrailPatch{
		Title:       optionalFormValue(c, "title"),
		Category:    optionalFormValue(c, "category"),
		Duration:    optionalFormValue(c, "duration"),
		Intensity:   optionalFormValue(c, "intensity"),
		Description: optionalFormValue(c, "description"),
	}, image)
	if err != nil {
		return h.mapTrailError(c, err)
	}

	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{
		Message: "Trail updated successfully",
		Data:    trail,
	})
}

func (h *TrailHandler) DeleteTrail(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return utils.RespondFail(c, fiber.StatusNotFound, "Trail not found")
	}

	if err := h.service.DeleteTrail(c.Context(), id); err != nil {
		return h.mapTrailError(c, err)
	}
	return utils.RespondOK(c, fiber.StatusOK, utils.Envelope{Message: "Trail deleted successfully"})
}

func (h *TrailHandler) ServeImage(c *fiber.Ctx) error {
	fullPath, err := h.images.Path(c.Params("filename"))
	if err != nil {
		return utils.RespondFail(c, fiber.StatusNotFound, "Image not found")
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		return utils.RespondFail(c, fiber.StatusNotFound, "Image not found")
	}
	return c.SendFile(fullPath)
}

// openImage returns the uploaded "image" part, or nil when none was sent.
// The returned func closes the part.
func openImage(c *fiber.Ctx) (*services.ImageUpload, func(), error) {
	noop := func() {}

	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return nil, noop, nil
	}
	if fileHeader.Size > services.MaxImageSize {
		return nil, noop, services.ErrImageTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, noop, err
	}

	return &services.ImageUpload{
		File:     file,
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, func() { _ = file.Close() }, nil
}

func (h *TrailHandler) mapTrailError(c *fiber.Ctx, err error) error {
	if handled, respErr := respondValidation(c, err); handled {
		return respErr
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.RespondFail(c, fiber.StatusNotFound, "Trail not found")
	case errors.Is(err, services.ErrImageRequired):
		return utils.RespondFail(c, fiber.StatusBadRequest, "Image is required")
	case errors.Is(err, services.ErrInvalidImage), errors.Is(err, services.ErrImageTooLarge):
		return utils.RespondFail(c, fiber.StatusBadRequest, capitalize(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("trail request failed")
		return utils.RespondError(c)
	}
}

func capitalize(message string) string {
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:]
}
