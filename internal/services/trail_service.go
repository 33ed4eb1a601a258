package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/repository"
	"github.com/cabiir/FianlFitnessGym/internal/validation"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrImageRequired = errors.New("image is required")
)

type trailStore interface {
	Create(ctx context.Context, input repository.TrailInput) (*models.Trail, error)
	List(ctx context.Context, category string) ([]models.Trail, error)
	GetByID(ctx context.Context, id int64) (*models.Trail, error)
	Update(ctx context.Context, id int64, input repository.TrailInput) (*models.Trail, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// TrailInput is the validated field set of a trail.
type TrailInput struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=beginner intermediate advanced"`
	Duration    string `json:"duration" validate:"required"`
	Intensity   string `json:"intensity" validate:"required,oneof=Low Medium High"`
	Description string `json:"description" validate:"required"`
}

// TrailPatch lists the fields sent with an update; nil keeps the stored value.
type TrailPatch struct {
	Title       *string
	Category    *string
	Duration    *string
	Intensity   *string
	Description *string
}

type ImageUpload struct {
	File     io.Reader
	Filename string
	Size     int64
}

type TrailService struct {
	trailRepo      trailStore
	storageService StorageService
}

func NewTrailService(trailRepo *repository.TrailRepository, storageService StorageService) *TrailService {
	return &TrailService{
		trailRepo:      trailRepo,
		storageService: storageService,
	}
}

// ListTrails returns trails newest first. An empty category or "all" lists
// every trail.
func (s *TrailService) ListTrails(ctx context.Context, category string) ([]models.Trail, error) {
	category = strings.TrimSpace(category)
	if category == "all" {
		category = ""
	}
	return s.trailRepo.List(ctx, category)
}

func (s *TrailService) GetTrail(ctx context.Context, id int64) (*models.Trail, error) {
	trail, err := s.trailRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return trail, nil
}

func (s *TrailService) CreateTrail(ctx context.Context, input TrailInput, image *ImageUpload) (*models.Trail, error) {
	if image == nil || image.File == nil {
		return nil, ErrImageRequired
	}

	input = normalizeTrailInput(input)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	filename, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	trail, err := s.trailRepo.Create(ctx, repository.TrailInput{
		Title:       input.Title,
		Category:    input.Category,
		Duration:    input.Duration,
		Intensity:   input.Intensity,
		Description: input.Description,
		Image:       filename,
	})
	if err != nil {
		return nil, s.discardImage(ctx, filename, err)
	}

	return trail, nil
}

// UpdateTrail merges patch into the stored trail. When image is set the old
// image file is removed before the new filename is written.
func (s *TrailService) UpdateTrail(ctx context.Context, id int64, patch TrailPatch, image *ImageUpload) (*models.Trail, error) {
	existing, err := s.GetTrail(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := TrailInput{
		Title:       existing.Title,
		Category:    existing.Category,
		Duration:    existing.Duration,
		Intensity:   existing.Intensity,
		Description: existing.Description,
	}
	applyPatch(&merged.Title, patch.Title)
	applyPatch(&merged.Category, patch.Category)
	applyPatch(&merged.Duration, patch.Duration)
	applyPatch(&merged.Intensity, patch.Intensity)
	applyPatch(&merged.Description, patch.Description)

	merged = normalizeTrailInput(merged)
	if err := validation.Struct(merged); err != nil {
		return nil, err
	}

	filename := existing.Image
	if image != nil && image.File != nil {
		filename, err = s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		if existing.Image != "" {
			if err := s.storageService.DeleteImage(ctx, existing.Image); err != nil {
				return nil, s.discardImage(ctx, filename, fmt.Errorf("delete previous image: %w", err))
			}
		}
	}

	trail, err := s.trailRepo.Update(ctx, id, repository.TrailInput{
		Title:       merged.Title,
		Category:    merged.Category,
		Duration:    merged.Duration,
		Intensity:   merged.Intensity,
		Description: merged.Description,
		Image:       filename,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
		}
		if filename != existing.Image {
			return nil, s.discardImage(ctx, filename, err)
		}
		return nil, err
	}

	return trail, nil
}

// DeleteTrail removes the trail's image and then the trail itself.
func (s *TrailService) DeleteTrail(ctx context.Context, id int64) error {
	trail, err := s.GetTrail(ctx, id)
	if err != nil {
		return err
	}

	if trail.Image != "" {
		if err := s.storageService.DeleteImage(ctx, trail.Image); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
	}

	deleted, err := s.trailRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *TrailService) saveImage(ctx context.Context, image *ImageUpload) (string, error) {
	if image.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return s.storageService.SaveImage(ctx, image.File, image.Filename)
}

// discardImage removes an upload whose record could not be written and
// returns cause, joined with any cleanup failure.
func (s *TrailService) discardImage(ctx context.Context, filename string, cause error) error {
	if cleanupErr := s.storageService.DeleteImage(ctx, filename); cleanupErr != nil {
		return errors.Join(cause, fmt.Errorf("cleanup failed: %w", cleanupErr))
	}
	return cause
}

func normalizeTrailInput(input TrailInput) TrailInput {
	return TrailInput{
		Title:       strings.TrimSpace(input.Title),
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Duration:    strings.TrimSpace(input.Duration),
		Intensity:   strings.TrimSpace(input.Intensity),
		Description: strings.TrimSpace(input.Description),
	}
}

func applyPatch(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
