package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/scan"
)

type scanSubmitRequest struct {
	Payload string `json:"payload"`
}

type scanSessionDTO struct {
	ID      string          `json:"id"`
	State   scan.State      `json:"state"`
	Profile *userProfileDTO `json:"user,omitempty"`
}

// ScanStart opens a scanner session for the caller.
func (a *App) ScanStart(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	s := a.Scans.Start(userID)
	a.json(w, http.StatusCreated, scanSessionDTO{ID: s.ID, State: s.State})
}

// ScanSubmit delivers a decoded QR payload to the caller's session. A
// valid payload finishes the session in Decoded and performs the
// check-in; anything else finishes it in Error.
func (a *App) ScanSubmit(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	sessionID := chi.URLParam(r, "id")

	owned, err := a.Scans.Get(sessionID)
	if err != nil || owned.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "scan session not found")
		return
	}

	var req scanSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	s, err := a.Scans.Submit(sessionID, req.Payload)
	switch {
	case errors.Is(err, scan.ErrSessionClosed):
		a.error(w, http.StatusConflict, "session_closed", "scan session already finished")
		return
	case errors.Is(err, domain.ErrInvalidQRPayload):
		a.Metrics.CheckInRejected.WithLabelValues("invalid_qr").Inc()
		a.json(w, http.StatusBadRequest, scanSessionDTO{ID: s.ID, State: s.State})
		return
	case err != nil:
		a.domainError(w, err)
		return
	}

	user, err := a.performCheckIn(r.Context(), userID, false, "self")
	if err != nil {
		a.domainError(w, err)
		return
	}
	profile := profileDTO(*user)
	a.json(w, http.StatusOK, scanSessionDTO{ID: s.ID, State: s.State, Profile: &profile})
}

// ScanCancel aborts the caller's session, releasing the capture slot.
func (a *App) ScanCancel(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	sessionID := chi.URLParam(r, "id")

	owned, err := a.Scans.Get(sessionID)
	if err != nil || owned.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "scan session not found")
		return
	}

	s, err := a.Scans.Cancel(sessionID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, scanSessionDTO{ID: s.ID, State: s.State})
}
