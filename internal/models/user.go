package models

import "time"

const (
	MembershipFree    = "free"
	MembershipPremium = "premium"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	RememberMe   bool      `json:"rememberMe"`
	Membership   string    `json:"membership"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
