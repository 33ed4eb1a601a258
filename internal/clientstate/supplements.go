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

type SupplementDraft struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

type SupplementPatch struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Rating      *float64 `json:"rating"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
}

func seedSupplements() []models.Supplement {
	return []models.Supplement{
		{
			ID:          1,
			Name:        "Whey Protein Isolate",
			Price:       34.99,
			Category:    "Protein",
			Rating:      4.8,
			Description: "Supports muscle recovery and growth",
			Image:       "https://images.unsplash.com/photo-1599058917765-a780eda07a3e?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&q=80",
		},
		{
			ID:          2,
			Name:        "Creatine Monohydrate",
			Price:       24.99,
			Category:    "Strength",
			Rating:      4.7,
			Description: "Improves strength and performance",
			Image:       "https://images.unsplash.com/photo-1591262184852-abc345175f3c?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&q=80",
		},
	}
}

// SupplementService owns the purchasable supplement catalog.
type SupplementService struct {
	mu          sync.Mutex
	store       clientstore.Store
	now         func() time.Time
	supplements []models.Supplement
}

func NewSupplementService(ctx context.Context, store clientstore.Store, opts ...Option) (*SupplementService, error) {
	o := buildOptions(opts)
	s := &SupplementService{store: store, now: o.now}

	found, err := loadJSON(ctx, store, KeySupplements, &s.supplements)
	if err != nil {
		return nil, err
	}
	if !found {
		s.supplements = seedSupplements()
		if err := saveJSON(ctx, store, KeySupplements, s.supplements); err != nil {
			return nil, err
		}
	}
	if s.supplements == nil {
		s.supplements = []models.Supplement{}
	}
	return s, nil
}

func (s *SupplementService) List() []models.Supplement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.supplements)
}

func (s *SupplementService) Get(id int64) (models.Supplement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Supplement{}, false
	}
	return s.supplements[idx], true
}

func (s *SupplementService) Create(ctx context.Context, draft SupplementDraft) (models.Supplement, error) {
	if err := validation.Struct(draft); err != nil {
		return models.Supplement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, supplement := range s.supplements {
		maxID = max(maxID, supplement.ID)
	}

	supplement := models.Supplement{
		ID:          nextID(s.now(), maxID),
		Name:        draft.Name,
		Price:       draft.Price,
		Category:    draft.Category,
		Rating:      draft.Rating,
		Description: draft.Description,
		Image:       draft.Image,
	}
	s.supplements = append(s.supplements, supplement)
	if err := saveJSON(ctx, s.store, KeySupplements, s.supplements); err != nil {
		return models.Supplement{}, err
	}
	return supplement, nil
}

// Update merges patch into the supplement with id; false when absent.
func (s *SupplementService) Update(ctx context.Context, id int64, patch SupplementPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	merged := s.supplements[idx]
	applyString(&merged.Name, patch.Name)
	applyString(&merged.Category, patch.Category)
	applyString(&merged.Description, patch.Description)
	applyString(&merged.Image, patch.Image)
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Rating != nil {
		merged.Rating = *patch.Rating
	}

	if err := validation.Struct(SupplementDraft{
		Name:   merged.Name,
		Price:  merged.Price,
		Rating: merged.Rating,
	}); err != nil {
		return false, err
	}

	s.supplements[idx] = merged
	if err := saveJSON(ctx, s.store, KeySupplements, s.supplements); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SupplementService) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.supplements = slices.Delete(s.supplements, idx, idx+1)
	if err := saveJSON(ctx, s.store, KeySupplements, s.supplements); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SupplementService) indexOf(id int64) int {
	return slices.IndexFunc(s.supplements, func(item models.Supplement) bool { return item.ID == id })
}
