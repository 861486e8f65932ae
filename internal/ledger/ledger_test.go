package ledger

import (
	"errors"
	"testing"
	"time"

	"server/internal/domain"
)

var t0 = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func TestCheckInAwardsPointsAndCoupons(t *testing.T) {
	rec := domain.User{ID: "u1"}
	now := t0
	for i := 1; i <= 12; i++ {
		var err error
		rec, err = CheckIn(rec, now, false)
		if err != nil {
			t.Fatalf("CheckIn %d returned error: %v", i, err)
		}
		if rec.Points != i {
			t.Fatalf("after %d check-ins points = %d, want %d", i, rec.Points, i)
		}
		if got, want := len(rec.Coupons), i/5; got != want {
			t.Fatalf("after %d check-ins coupons = %d, want %d", i, got, want)
		}
		if rec.LastCheckIn == nil || !rec.LastCheckIn.Equal(now) {
			t.Fatalf("after %d check-ins lastCheckIn = %v, want %v", i, rec.LastCheckIn, now)
		}
		now = now.Add(Cooldown)
	}
	for _, c := range rec.Coupons {
		if c.Redeemed {
			t.Fatalf("freshly awarded coupon %s is redeemed", c.ID)
		}
		if c.ID == "" {
			t.Fatal("coupon awarded without an id")
		}
	}
}

func TestCheckInCouponIDsUnique(t *testing.T) {
	rec := domain.User{ID: "u1"}
	now := t0
	for i := 0; i < 25; i++ {
		var err error
		rec, err = CheckIn(rec, now, true)
		if err != nil {
			t.Fatalf("CheckIn returned error: %v", err)
		}
	}
	seen := map[string]bool{}
	for _, c := range rec.Coupons {
		if seen[c.ID] {
			t.Fatalf("duplicate coupon id %s", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("got %d coupons, want 5", len(seen))
	}
}

func TestCheckInCooldown(t *testing.T) {
	rec := domain.User{ID: "u1"}
	rec, err := CheckIn(rec, t0, false)
	if err != nil {
		t.Fatalf("first CheckIn returned error: %v", err)
	}

	got, err := CheckIn(rec, t0.Add(6*24*time.Hour), false)
	if err == nil {
		t.Fatal("CheckIn inside cooldown succeeded")
	}
	if !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("error = %v, want ErrCooldownActive", err)
	}
	var cerr *CooldownError
	if !errors.As(err, &cerr) {
		t.Fatalf("error %T does not carry next eligible time", err)
	}
	if want := t0.Add(Cooldown); !cerr.NextEligible.Equal(want) {
		t.Fatalf("NextEligible = %v, want %v", cerr.NextEligible, want)
	}
	if got.Points != rec.Points || len(got.Coupons) != len(rec.Coupons) || !got.LastCheckIn.Equal(*rec.LastCheckIn) {
		t.Fatalf("failed check-in mutated record: %+v", got)
	}

	// Exactly 7 days is outside the window.
	got, err = CheckIn(rec, t0.Add(Cooldown), false)
	if err != nil {
		t.Fatalf("CheckIn at cooldown boundary returned error: %v", err)
	}
	if got.Points != 2 {
		t.Fatalf("points = %d, want 2", got.Points)
	}

	got, err = CheckIn(rec, t0.Add(Cooldown+time.Second), false)
	if err != nil {
		t.Fatalf("CheckIn past cooldown returned error: %v", err)
	}
	if got.Points != 2 {
		t.Fatalf("points = %d, want 2", got.Points)
	}
}

func TestCheckInPrivilegedBypassesCooldown(t *testing.T) {
	rec := domain.User{ID: "u1"}
	var err error
	for i := 0; i < 3; i++ {
		rec, err = CheckIn(rec, t0.Add(time.Duration(i)*time.Minute), true)
		if err != nil {
			t.Fatalf("privileged CheckIn %d returned error: %v", i, err)
		}
	}
	if rec.Points != 3 {
		t.Fatalf("points = %d, want 3", rec.Points)
	}
}

func TestCheckInDoesNotAliasCouponSlice(t *testing.T) {
	rec := domain.User{ID: "u1", Points: 4}
	before, err := CheckIn(rec, t0, false)
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}
	if len(before.Coupons) != 1 {
		t.Fatalf("coupons = %d, want 1", len(before.Coupons))
	}
	if len(rec.Coupons) != 0 {
		t.Fatalf("input record coupons mutated: %+v", rec.Coupons)
	}
}

func TestRedeemCoupon(t *testing.T) {
	rec := domain.User{ID: "u1", Points: 4}
	rec, err := CheckIn(rec, t0, false)
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}
	couponID := rec.Coupons[0].ID

	redeemed, changed, err := RedeemCoupon(rec, couponID)
	if err != nil {
		t.Fatalf("RedeemCoupon returned error: %v", err)
	}
	if !changed {
		t.Fatal("first redemption reported no change")
	}
	if !redeemed.Coupons[0].Redeemed {
		t.Fatal("coupon not marked redeemed")
	}
	if redeemed.Points != rec.Points {
		t.Fatalf("redemption changed points: %d -> %d", rec.Points, redeemed.Points)
	}
	if rec.Coupons[0].Redeemed {
		t.Fatal("input record coupon mutated")
	}

	// Idempotent: second redemption is a no-op.
	again, changed, err := RedeemCoupon(redeemed, couponID)
	if err != nil {
		t.Fatalf("second RedeemCoupon returned error: %v", err)
	}
	if changed {
		t.Fatal("second redemption reported a change")
	}
	if !again.Coupons[0].Redeemed {
		t.Fatal("coupon lost redeemed flag")
	}
}

func TestRedeemCouponLeavesSiblingsAlone(t *testing.T) {
	rec := domain.User{ID: "u1", Coupons: []domain.Coupon{
		{ID: "c1"}, {ID: "c2"}, {ID: "c3"},
	}}
	got, changed, err := RedeemCoupon(rec, "c2")
	if err != nil || !changed {
		t.Fatalf("RedeemCoupon = changed %v, err %v", changed, err)
	}
	if got.Coupons[0].Redeemed || got.Coupons[2].Redeemed {
		t.Fatalf("sibling coupons mutated: %+v", got.Coupons)
	}
	if !got.Coupons[1].Redeemed {
		t.Fatal("target coupon not redeemed")
	}
}

func TestRedeemCouponUnknownID(t *testing.T) {
	rec := domain.User{ID: "u1", Coupons: []domain.Coupon{{ID: "c1"}}}
	_, _, err := RedeemCoupon(rec, "nope")
	if !errors.Is(err, domain.ErrCouponNotFound) {
		t.Fatalf("error = %v, want ErrCouponNotFound", err)
	}
}

func TestNextEligible(t *testing.T) {
	if got := NextEligible(domain.User{}); got != nil {
		t.Fatalf("NextEligible for fresh user = %v, want nil", got)
	}
	last := t0
	got := NextEligible(domain.User{LastCheckIn: &last})
	if got == nil || !got.Equal(t0.Add(Cooldown)) {
		t.Fatalf("NextEligible = %v, want %v", got, t0.Add(Cooldown))
	}
}
