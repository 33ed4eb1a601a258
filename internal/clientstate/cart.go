package clientstate

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/models"
)

// CartService holds at most one line per supplement id. Quantities never
// drop below 1; removing a line is a separate call.
type CartService struct {
	mu    sync.Mutex
	store clientstore.Store
	items []models.CartItem
}

func NewCartService(ctx context.Context, store clientstore.Store) (*CartService, error) {
	s := &CartService{store: store}
	if _, err := loadJSON(ctx, store, KeyCart, &s.items); err != nil {
		return nil, err
	}
	if s.items == nil {
		s.items = []models.CartItem{}
	}
	return s, nil
}

// Add puts supplement in the cart with quantity 1. It returns false when the
// supplement is already in the cart.
func (s *CartService) Add(ctx context.Context, supplement models.Supplement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(supplement.ID) >= 0 {
		return false, nil
	}
	s.items = append(s.items, models.CartItem{Supplement: supplement, Quantity: 1})
	return true, s.save(ctx)
}

func (s *CartService) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(item models.CartItem) bool { return item.ID == id })
	if len(s.items) == before {
		return nil
	}
	return s.save(ctx)
}

func (s *CartService) Increment(ctx context.Context, id int64) error {
	return s.adjust(ctx, id, 1)
}

func (s *CartService) Decrement(ctx context.Context, id int64) error {
	return s.adjust(ctx, id, -1)
}

func (s *CartService) adjust(ctx context.Context, id int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	s.items[idx].Quantity = max(1, s.items[idx].Quantity+delta)
	return s.save(ctx)
}

func (s *CartService) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// TotalCount sums quantities across the cart.
func (s *CartService) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the sum of price times quantity, rounded to cents.
func (s *CartService) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subtotal float64
	for _, item := range s.items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return math.Round(subtotal*100) / 100
}

func (s *CartService) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(item models.CartItem) bool { return item.ID == id })
}

func (s *CartService) save(ctx context.Context) error {
	return saveJSON(ctx, s.store, KeyCart, s.items)
}
