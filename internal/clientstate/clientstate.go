// Package clientstate holds the per-client domain contexts: the signed-in
// member and their enrollments, the program catalog, the supplement catalog
// and the shopping cart. Each service owns its collection and writes the whole
// collection through to a clientstore.Store after every mutation.
package clientstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
)

// Persisted keys.
const (
	KeyCurrentUser = "fitnessUser"
	KeyEnrollments = "selectedPrograms"
	KeyUsers       = "allUsers"
	KeyPrograms    = "fitnessPrograms"
	KeySupplements = "supplements"
	KeyCart        = "cartItems"
)

const dateLayout = "2006-01-02"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotSignedIn        = errors.New("no active session")
	ErrInvalidMembership  = errors.New("invalid membership")
)

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock overrides time.Now for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Workspace bundles the contexts for one client.
type Workspace struct {
	Session     *SessionService
	Programs    *CatalogService
	Supplements *SupplementService
	Cart        *CartService
}

// Open loads every context for the client behind store.
func Open(ctx context.Context, store clientstore.Store, opts ...Option) (*Workspace, error) {
	session, err := NewSessionService(ctx, store, opts...)
	if err != nil {
		return nil, err
	}
	programs, err := NewCatalogService(ctx, store, opts...)
	if err != nil {
		return nil, err
	}
	supplements, err := NewSupplementService(ctx, store, opts...)
	if err != nil {
		return nil, err
	}
	cart, err := NewCartService(ctx, store)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		Session:     session,
		Programs:    programs,
		Supplements: supplements,
		Cart:        cart,
	}, nil
}

// loadJSON decodes key into dest. found is false when the key is absent.
func loadJSON(ctx context.Context, store clientstore.Store, key string, dest any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, store clientstore.Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// nextID returns a millisecond timestamp id, bumped past maxID so ids stay
// unique and increasing even within the same millisecond.
func nextID(now time.Time, maxID int64) int64 {
	id := now.UnixMilli()
	if id <= maxID {
		id = maxID + 1
	}
	return id
}
