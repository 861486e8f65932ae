package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/ledger"
)

// checkInRetries bounds the optimistic read-modify-write loop. A loser of
// the race re-reads; if the fresh record is now inside the cooldown the
// retry surfaces CooldownActive instead of double-awarding.
const checkInRetries = 3

type checkInRequest struct {
	Payload string `json:"payload"`
}

// CheckIn records a self-check-in gated by the scanned QR payload.
func (a *App) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Verifier.Verify(req.Payload); err != nil {
		a.Metrics.CheckInRejected.WithLabelValues("invalid_qr").Inc()
		a.domainError(w, err)
		return
	}

	user, err := a.performCheckIn(r.Context(), userID, false, "self")
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, profileDTO(*user))
}

// performCheckIn runs the shared award logic for the self and admin paths
// under an optimistic concurrency loop: the conditional write only lands
// if nobody else updated the record since it was read, so the coupon
// decision is always computed from fresh points.
func (a *App) performCheckIn(ctx context.Context, userID string, privileged bool, path string) (*domain.User, error) {
	var lastErr error
	for attempt := 0; attempt < checkInRetries; attempt++ {
		rec, err := a.Users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		updated, err := ledger.CheckIn(*rec, time.Now(), privileged)
		if err != nil {
			a.Metrics.CheckInRejected.WithLabelValues("cooldown").Inc()
			return nil, err
		}

		err = a.Users.UpdateLoyalty(ctx, &updated, rec.Points, rec.Coupons, rec.LastCheckIn)
		if errors.Is(err, domain.ErrWriteConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		a.Metrics.CheckIns.WithLabelValues(path).Inc()
		if len(updated.Coupons) > len(rec.Coupons) {
			a.Metrics.CouponsAwarded.Inc()
		}
		a.refreshBoard(ctx)
		return &updated, nil
	}
	return nil, lastErr
}
