package clientstate

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/models"
	"github.com/cabiir/FianlFitnessGym/internal/validation"
	"github.com/cabiir/FianlFitnessGym/pkg/utils"
)

const totalWorkouts = 20

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionService tracks registered members, the active session and the
// active member's enrolled programs.
type SessionService struct {
	mu          sync.Mutex
	store       clientstore.Store
	now         func() time.Time
	users       []models.Member
	current     *models.SessionUser
	enrollments []models.Enrollment
}

func NewSessionService(ctx context.Context, store clientstore.Store, opts ...Option) (*SessionService, error) {
	o := buildOptions(opts)
	s := &SessionService{store: store, now: o.now}

	if _, err := loadJSON(ctx, store, KeyUsers, &s.users); err != nil {
		return nil, err
	}
	var current models.SessionUser
	found, err := loadJSON(ctx, store, KeyCurrentUser, &current)
	if err != nil {
		return nil, err
	}
	if found {
		s.current = &current
	}
	if _, err := loadJSON(ctx, store, KeyEnrollments, &s.enrollments); err != nil {
		return nil, err
	}
	if s.users == nil {
		s.users = []models.Member{}
	}
	if s.enrollments == nil {
		s.enrollments = []models.Enrollment{}
	}
	return s, nil
}

// Register adds a member and signs them in. The email must not already be
// registered (exact match).
func (s *SessionService) Register(ctx context.Context, input RegisterInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.users, func(m models.Member) bool { return m.Email == input.Email }) {
		return ErrEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	member := models.Member{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   hash,
		JoinDate:   now.Format(dateLayout),
		Membership: models.MembershipFreePlan,
	}
	session := member.Session()

	s.users = append(s.users, member)
	s.current = &session

	if err := saveJSON(ctx, s.store, KeyUsers, s.users); err != nil {
		return err
	}
	return saveJSON(ctx, s.store, KeyCurrentUser, s.current)
}

// Login signs in the member whose email and password both match.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.users, func(m models.Member) bool { return m.Email == email })
	if idx < 0 || !utils.CheckPassword(password, s.users[idx].Password) {
		return ErrInvalidCredentials
	}

	session := s.users[idx].Session()
	s.current = &session
	return saveJSON(ctx, s.store, KeyCurrentUser, s.current)
}

// Logout clears the session and the enrolled programs.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.enrollments = []models.Enrollment{}

	if err := s.store.Remove(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("remove %s: %w", KeyCurrentUser, err)
	}
	if err := s.store.Remove(ctx, KeyEnrollments); err != nil {
		return fmt.Errorf("remove %s: %w", KeyEnrollments, err)
	}
	return nil
}

// SetMembership switches the signed-in member between plans.
func (s *SessionService) SetMembership(ctx context.Context, membership string) error {
	if membership != models.MembershipFreePlan && membership != models.MembershipPremiumPlan {
		return ErrInvalidMembership
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNotSignedIn
	}

	s.current.Membership = membership
	for i := range s.users {
		if s.users[i].ID == s.current.ID {
			s.users[i].Membership = membership
		}
	}

	if err := saveJSON(ctx, s.store, KeyUsers, s.users); err != nil {
		return err
	}
	return saveJSON(ctx, s.store, KeyCurrentUser, s.current)
}

// Enroll starts program for the session. It returns false when the program is
// already enrolled.
func (s *SessionService) Enroll(ctx context.Context, program models.Program) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.enrollments, func(e models.Enrollment) bool { return e.ID == program.ID }) {
		return false, nil
	}

	s.enrollments = append(s.enrollments, models.Enrollment{
		Program:   program,
		Progress:  0,
		StartDate: s.now().Format(dateLayout),
		Workouts:  WorkoutsLabel(0),
	})
	if err := saveJSON(ctx, s.store, KeyEnrollments, s.enrollments); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProgress sets progress, clamped to [0,100], and recomputes the
// workouts label. Unknown program ids are ignored.
func (s *SessionService) UpdateProgress(ctx context.Context, programID int64, progress int) error {
	progress = min(max(progress, 0), 100)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.enrollments, func(e models.Enrollment) bool { return e.ID == programID })
	if idx < 0 {
		return nil
	}

	s.enrollments[idx].Progress = progress
	s.enrollments[idx].Workouts = WorkoutsLabel(progress)
	return saveJSON(ctx, s.store, KeyEnrollments, s.enrollments)
}

func (s *SessionService) Unenroll(ctx context.Context, programID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.enrollments)
	s.enrollments = slices.DeleteFunc(s.enrollments, func(e models.Enrollment) bool { return e.ID == programID })
	if len(s.enrollments) == before {
		return nil
	}
	return saveJSON(ctx, s.store, KeyEnrollments, s.enrollments)
}

// CurrentUser returns the active session, if any.
func (s *SessionService) CurrentUser() (models.SessionUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return models.SessionUser{}, false
	}
	return *s.current, true
}

// Users lists registered members without their password hashes.
func (s *SessionService) Users() []models.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.SessionUser, 0, len(s.users))
	for _, member := range s.users {
		users = append(users, member.Session())
	}
	return users
}

func (s *SessionService) Enrollments() []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.enrollments)
}

// WorkoutsLabel renders progress as completed workouts out of 20, rounding
// down. progress is expected in [0,100].
func WorkoutsLabel(progress int) string {
	done := progress * totalWorkouts / 100
	return fmt.Sprintf("%d/%d completed", done, totalWorkouts)
}
