// Package ledger holds the pure check-in and coupon rules. Functions here
// never touch storage: they take a user record snapshot and return the next
// state, leaving the read-modify-write cycle to the caller.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// Cooldown is the minimum interval between two non-privileged check-ins.
const Cooldown = 7 * 24 * time.Hour

// CouponEvery is the number of points between coupon awards.
const CouponEvery = 5

// CooldownError reports a check-in attempt inside the cooldown window and
// carries the instant at which the user becomes eligible again.
type CooldownError struct {
	NextEligible time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("already checked in this week, eligible at %s", e.NextEligible.Format(time.RFC3339))
}

func (e *CooldownError) Unwrap() error {
	return domain.ErrCooldownActive
}

// NextEligible returns the earliest instant the user may self-check-in
// again, or nil if they have never checked in.
func NextEligible(rec domain.User) *time.Time {
	if rec.LastCheckIn == nil {
		return nil
	}
	next := rec.LastCheckIn.Add(Cooldown)
	return &next
}

// CheckIn computes the record state after one check-in at the given
// instant. Non-privileged callers inside the cooldown window get a
// *CooldownError and an unchanged record. Every fifth point appends a
// fresh unredeemed coupon, so len(Coupons) == Points/5 always holds for
// records mutated only through this function.
//
// The admin path sets privileged to bypass the cooldown; award logic is
// shared so the two paths cannot drift.
func CheckIn(rec domain.User, now time.Time, privileged bool) (domain.User, error) {
	if !privileged && rec.LastCheckIn != nil && now.Sub(*rec.LastCheckIn) < Cooldown {
		return rec, &CooldownError{NextEligible: rec.LastCheckIn.Add(Cooldown)}
	}

	next := rec
	next.Points = rec.Points + 1

	// Copy so the caller's snapshot is never aliased.
	next.Coupons = make([]domain.Coupon, len(rec.Coupons), len(rec.Coupons)+1)
	copy(next.Coupons, rec.Coupons)
	if next.Points%CouponEvery == 0 {
		next.Coupons = append(next.Coupons, domain.Coupon{
			ID:       uuid.NewString(),
			Redeemed: false,
			IssuedAt: now,
		})
	}

	checkedInAt := now
	next.LastCheckIn = &checkedInAt
	return next, nil
}

// RedeemCoupon marks the coupon with the given id as redeemed and returns
// the updated record. Redeeming an already-redeemed coupon is a no-op, not
// an error; the second return reports whether anything changed. An unknown
// id yields domain.ErrCouponNotFound.
func RedeemCoupon(rec domain.User, couponID string) (domain.User, bool, error) {
	idx := -1
	for i, c := range rec.Coupons {
		if c.ID == couponID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rec, false, domain.ErrCouponNotFound
	}
	if rec.Coupons[idx].Redeemed {
		return rec, false, nil
	}

	next := rec
	next.Coupons = make([]domain.Coupon, len(rec.Coupons))
	copy(next.Coupons, rec.Coupons)
	next.Coupons[idx].Redeemed = true
	return next, true, nil
}
