// Package handlers implements the HTTP surface of the check-in service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/auth"
	"server/internal/domain"
	"server/internal/leaderboard"
	"server/internal/ledger"
	"server/internal/metrics"
	"server/internal/middleware"
	"server/internal/scan"
)

// StatsSource aggregates venue-wide totals for the admin dashboard.
type StatsSource interface {
	StatsSummary(ctx context.Context) (*repo.Stats, error)
}

// App is the handler container; everything a request handler needs is
// injected here.
type App struct {
	Logger   zerolog.Logger
	Users    domain.UserRepository
	Stats    StatsSource
	Auth     *auth.Authenticator
	Tokens   *auth.JWTManager
	Verifier *scan.Verifier
	Scans    *scan.Store
	Board    *leaderboard.Cache
	Metrics  *metrics.Metrics
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, msg string) {
	a.json(w, code, map[string]string{"error": slug, "message": msg})
}

// domainError maps a domain failure onto the HTTP surface. Anything not in
// the taxonomy is a collaborator failure and surfaces as a generic 500.
func (a *App) domainError(w http.ResponseWriter, err error) {
	var cooldown *ledger.CooldownError
	switch {
	case errors.As(err, &cooldown):
		a.json(w, http.StatusConflict, map[string]string{
			"error":         "cooldown_active",
			"message":       "already checked in this week",
			"next_eligible": cooldown.NextEligible.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, domain.ErrCooldownActive):
		a.error(w, http.StatusConflict, "cooldown_active", "already checked in this week")
	case errors.Is(err, domain.ErrCouponNotFound):
		a.error(w, http.StatusNotFound, "coupon_not_found", "coupon not found")
	case errors.Is(err, domain.ErrInvalidQRPayload):
		a.error(w, http.StatusBadRequest, "invalid_qr", "invalid QR code")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, domain.ErrWriteConflict):
		a.error(w, http.StatusConflict, "conflict", "please retry")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// refreshBoard recomputes the leaderboard snapshot after a local mutation
// so the next read does not wait for the periodic tick.
func (a *App) refreshBoard(ctx context.Context) {
	if a.Board == nil {
		return
	}
	if err := a.Board.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Warn().Err(err).Msg("leaderboard refresh after mutation failed")
	}
}

type couponDTO struct {
	ID       string    `json:"id"`
	Redeemed bool      `json:"redeemed"`
	IssuedAt time.Time `json:"issued_at"`
}

type userProfileDTO struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         string      `json:"role"`
	Points       int         `json:"points"`
	Coupons      []couponDTO `json:"coupons"`
	LastCheckIn  *time.Time  `json:"last_check_in,omitempty"`
	NextEligible *time.Time  `json:"next_eligible,omitempty"`
}

func profileDTO(u domain.User) userProfileDTO {
	coupons := make([]couponDTO, 0, len(u.Coupons))
	for _, c := range u.Coupons {
		coupons = append(coupons, couponDTO(c))
	}
	return userProfileDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		Points:       u.Points,
		Coupons:      coupons,
		LastCheckIn:  u.LastCheckIn,
		NextEligible: ledger.NextEligible(u),
	}
}
