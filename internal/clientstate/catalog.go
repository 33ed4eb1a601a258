package clientstate

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/validation"
)

const fallbackImageCategory = "yoga"

var defaultImages = map[string]string{
	"beginner":     "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?ixlib=rb-4.0.3&auto=format&fit=crop&w=1170&q=80",
	"intermediate": "https://images.unsplash.com/photo-1599901860904-17e6ed7083a0?ixlib=rb-4.0.3&auto=format&fit=crop&w=1170&q=80",
	"advanced":     "https://images.unsplash.com/photo-1575052814086-f385e2e2ad1b?ixlib=rb-4.0.3&auto=format&fit=crop&w=1170&q=80",
	"yoga":         "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?ixlib=rb-4.0.3&auto=format&fit=crop&w=1170&q=80",
}

// DefaultImage returns the stock image for category, falling back to the
// generic one for unknown categories.
func DefaultImage(category string) string {
	if image, ok := defaultImages[category]; ok {
		return image
	}
	return defaultImages[fallbackImageCategory]
}

type ProgramDraft struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=beginner intermediate advanced"`
	Duration    string `json:"duration" validate:"required"`
	Intensity   string `json:"intensity" validate:"required,oneof=Low Medium High Gentle Moderate Challenging 'High Intensity'"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image"`
}

// ProgramPatch carries the fields to overwrite; nil fields keep their value.
type ProgramPatch struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Duration    *string `json:"duration"`
	Intensity   *string `json:"intensity"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func seedPrograms() []models.Program {
	return []models.Program{
		{
			ID:          1,
			Title:       "Beginner's Foundation",
			Category:    "beginner",
			Duration:    "4 weeks",
			Intensity:   "Low",
			Image:       DefaultImage("beginner"),
			Description: "Build a solid fitness foundation with guided exercises perfect for starters.",
		},
		{
			ID:          2,
			Title:       "Strength Builder",
			Category:    "intermediate",
			Duration:    "6 weeks",
			Intensity:   "Medium",
			Image:       DefaultImage("intermediate"),
			Description: "Increase your power and muscle definition with our structured strength program.",
		},
		{
			ID:          3,
			Title:       "Endurance Master",
			Category:    "advanced",
			Duration:    "8 weeks",
			Intensity:   "High",
			Image:       DefaultImage("advanced"),
			Description: "Push your limits and build exceptional cardiovascular endurance.",
		},
	}
}

// CatalogService owns the program catalog. Every program always carries a
// non-empty image.
type CatalogService struct {
	mu       sync.Mutex
	store    clientstore.Store
	now      func() time.Time
	programs []models.Program
}

// NewCatalogService loads the persisted catalog, seeding the stock programs
// when nothing usable is stored.
func NewCatalogService(ctx context.Context, store clientstore.Store, opts ...Option) (*CatalogService, error) {
	o := buildOptions(opts)
	s := &CatalogService{store: store, now: o.now}

	var programs []models.Program
	found, err := loadJSON(ctx, store, KeyPrograms, &programs)
	switch {
	case err != nil && !found:
		return nil, err
	case err != nil || !found:
		s.programs = seedPrograms()
		if err := saveJSON(ctx, store, KeyPrograms, s.programs); err != nil {
			return nil, err
		}
	default:
		for i := range programs {
			if programs[i].Image == "" {
				programs[i].Image = DefaultImage(programs[i].Category)
			}
		}
		s.programs = programs
		if s.programs == nil {
			s.programs = []models.Program{}
		}
	}
	return s, nil
}

// List returns programs in insertion order. An empty category or "all"
// disables filtering.
func (s *CatalogService) List(category string) []models.Program {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == "" || category == "all" {
		return slices.Clone(s.programs)
	}
	filtered := make([]models.Program, 0, len(s.programs))
	for _, program := range s.programs {
		if program.Category == category {
			filtered = append(filtered, program)
		}
	}
	return filtered
}

func (s *CatalogService) Get(id int64) (models.Program, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Program{}, false
	}
	return s.programs[idx], true
}

func (s *CatalogService) Create(ctx context.Context, draft ProgramDraft) (models.Program, error) {
	if err := validation.Struct(draft); err != nil {
		return models.Program{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	program := models.Program{
		ID:          nextID(s.now(), s.maxID()),
		Title:       draft.Title,
		Category:    draft.Category,
		Duration:    draft.Duration,
		Intensity:   draft.Intensity,
		Description: draft.Description,
		Image:       draft.Image,
	}
	if program.Image == "" {
		program.Image = DefaultImage(program.Category)
	}

	s.programs = append(s.programs, program)
	if err := saveJSON(ctx, s.store, KeyPrograms, s.programs); err != nil {
		return models.Program{}, err
	}
	return program, nil
}

// Update merges patch into the program with id. It reports false when no
// such program exists. A patch without an image resets the image to the
// default for the merged category.
func (s *CatalogService) Update(ctx context.Context, id int64, patch ProgramPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	merged := s.programs[idx]
	applyString(&merged.Title, patch.Title)
	applyString(&merged.Category, patch.Category)
	applyString(&merged.Duration, patch.Duration)
	applyString(&merged.Intensity, patch.Intensity)
	applyString(&merged.Description, patch.Description)
	merged.Image = ""
	applyString(&merged.Image, patch.Image)

	if err := validation.Struct(ProgramDraft{
		Title:       merged.Title,
		Category:    merged.Category,
		Duration:    merged.Duration,
		Intensity:   merged.Intensity,
		Description: merged.Description,
	}); err != nil {
		return false, err
	}
	if merged.Image == "" {
		merged.Image = DefaultImage(merged.Category)
	}

	s.programs[idx] = merged
	if err := saveJSON(ctx, s.store, KeyPrograms, s.programs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.programs = slices.Delete(s.programs, idx, idx+1)
	if err := saveJSON(ctx, s.store, KeyPrograms, s.programs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CatalogService) indexOf(id int64) int {
	return slices.IndexFunc(s.programs, func(p models.Program) bool { return p.ID == id })
}

func (s *CatalogService) maxID() int64 {
	var maxID int64
	for _, program := range s.programs {
		maxID = max(maxID, program.ID)
	}
	return maxID
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
