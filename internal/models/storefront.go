package models

const (
	MembershipFreePlan    = "Free Plan"
	MembershipPremiumPlan = "Premium Plan"
)

// Member is a registered client-side account. Password holds a bcrypt hash.
type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	JoinDate   string `json:"joinDate"`
	Membership string `json:"membership"`
}

// SessionUser is the password-free view of a Member held as the active session.
type SessionUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Membership string `json:"membership"`
	JoinDate   string `json:"joinDate"`
}

func (m Member) Session() SessionUser {
	return SessionUser{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Membership: m.Membership,
		JoinDate:   m.JoinDate,
	}
}

type Supplement struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
}

type CartItem struct {
	Supplement
	Quantity int `json:"quantity"`
}
