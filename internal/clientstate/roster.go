package clientstate

import (
	"errors"
	"strings"

	"github.com/cabiir/FianlFitnessGym/internal/models"
)

// Membership filters accepted by Roster.
const (
	RosterAll     = "all"
	RosterFree    = "free"
	RosterPremium = "premium"
)

var ErrInvalidRosterFilter = errors.New("membership filter must be all, free or premium")

// RosterQuery narrows the member roster. Empty fields match everyone.
type RosterQuery struct {
	Membership string
	Search     string
}

// UserRoster is the back-office view of registered members. The counts cover
// every member, not only the filtered Users.
type UserRoster struct {
	Users   []models.SessionUser `json:"users"`
	Total   int                  `json:"total"`
	Free    int                  `json:"free"`
	Premium int                  `json:"premium"`
}

// Roster lists members matching q without their password hashes. A member with
// no membership recorded counts as free.
func (s *SessionService) Roster(q RosterQuery) (UserRoster, error) {
	filter := strings.ToLower(strings.TrimSpace(q.Membership))
	switch filter {
	case "", RosterAll, RosterFree, RosterPremium:
	default:
		return UserRoster{}, ErrInvalidRosterFilter
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	s.mu.Lock()
	defer s.mu.Unlock()

	roster := UserRoster{Users: make([]models.SessionUser, 0, len(s.users)), Total: len(s.users)}
	for _, member := range s.users {
		premium := member.Membership == models.MembershipPremiumPlan
		if premium {
			roster.Premium++
		} else {
			roster.Free++
		}

		switch {
		case filter == RosterFree && premium, filter == RosterPremium && !premium:
			continue
		case search != "" &&
			!strings.Contains(strings.ToLower(member.Name), search) &&
			!strings.Contains(strings.ToLower(member.Email), search):
			continue
		}
		roster.Users = append(roster.Users, member.Session())
	}
	return roster, nil
}
