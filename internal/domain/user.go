package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Coupon is a redeemable reward earned every fifth check-in. Coupons are
// append-only on a user record; redemption flips Redeemed once and never
// reverts.
type Coupon struct {
	ID       string    `json:"id"`
	Redeemed bool      `json:"redeemed"`
	IssuedAt time.Time `json:"issued_at"`
}

// User represents an account with its loyalty record. Points only ever go
// up, one per successful check-in. LastCheckIn is nil for accounts that
// have never checked in.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	Points       int
	Coupons      []Coupon
	LastCheckIn  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// ActiveCoupons returns the user's unredeemed coupons.
func (u User) ActiveCoupons() []Coupon {
	var active []Coupon
	for _, c := range u.Coupons {
		if !c.Redeemed {
			active = append(active, c)
		}
	}
	return active
}
