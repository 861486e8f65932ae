package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for user loyalty records.
//
// UpdateLoyalty is a conditional write: it only applies when the stored
// points, coupons, and last check-in still match the values the caller
// read, and returns ErrWriteConflict otherwise. Two racing check-ins
// therefore cannot both award a point, and two racing redemptions of
// different coupons cannot silently undo each other; the loser re-reads
// and retries.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
	UpdateLoyalty(ctx context.Context, updated *User, expectedPoints int, expectedCoupons []Coupon, expectedLastCheckIn *time.Time) error
	SetRole(ctx context.Context, id string, role UserRole) error
}
