package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

// Signup registers a new account and returns a session token. The fresh
// record starts with zero points, no coupons, and no check-in history.
func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email and password required")
		return
	}

	user, err := a.Auth.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, domain.ErrWeakPassword):
		a.error(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	case errors.Is(err, domain.ErrEmailInUse):
		a.error(w, http.StatusConflict, "email_in_use", "email already registered")
		return
	case err != nil:
		a.Logger.Error().Err(err).Msg("signup failed")
		a.error(w, http.StatusInternalServerError, "internal", "signup failed")
		return
	}

	a.session(w, user, http.StatusCreated)
}

// Login verifies credentials and returns a session token.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := a.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	a.session(w, user, http.StatusOK)
}

// Me returns the caller's profile and loyalty record.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, profileDTO(*user))
}

func (a *App) session(w http.ResponseWriter, user *domain.User, code int) {
	token, err := a.Tokens.Generate(user)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, code, sessionResponse{Token: token, User: profileDTO(*user)})
}
