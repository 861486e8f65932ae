package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/ledger"
)

// AdminListUsers returns every user record for the dashboard.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.ListAll(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]userProfileDTO, 0, len(users))
	for _, u := range users {
		out = append(out, profileDTO(u))
	}
	a.json(w, http.StatusOK, map[string]any{"users": out})
}

// AdminCheckIn records a check-in on behalf of a user. Front-desk staff
// logging a guest's visit bypass the weekly cooldown; the award logic is
// the same as the self path.
func (a *App) AdminCheckIn(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := a.performCheckIn(r.Context(), userID, true, "admin")
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, profileDTO(*user))
}

// AdminRedeemCoupon marks one coupon redeemed. Redeeming an
// already-redeemed coupon is a no-op, not an error, so a double-tap at
// the front desk cannot corrupt anything.
func (a *App) AdminRedeemCoupon(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	couponID := chi.URLParam(r, "couponID")

	for attempt := 0; attempt < checkInRetries; attempt++ {
		rec, err := a.Users.GetByID(r.Context(), userID)
		if err != nil {
			a.domainError(w, err)
			return
		}

		updated, changed, err := ledger.RedeemCoupon(*rec, couponID)
		if err != nil {
			a.domainError(w, err)
			return
		}
		if !changed {
			a.json(w, http.StatusOK, profileDTO(*rec))
			return
		}

		err = a.Users.UpdateLoyalty(r.Context(), &updated, rec.Points, rec.Coupons, rec.LastCheckIn)
		if errors.Is(err, domain.ErrWriteConflict) {
			continue
		}
		if err != nil {
			a.domainError(w, err)
			return
		}

		a.Metrics.CouponsRedeemed.Inc()
		a.refreshBoard(r.Context())
		a.json(w, http.StatusOK, profileDTO(updated))
		return
	}
	a.domainError(w, domain.ErrWriteConflict)
}

// AdminStats serves venue-wide totals.
func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Stats.StatsSummary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"total_users":      stats.TotalUsers,
		"total_check_ins":  stats.TotalCheckIns,
		"coupons_issued":   stats.CouponsIssued,
		"coupons_redeemed": stats.CouponsRedeemed,
	})
}
