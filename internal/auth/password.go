// Package auth implements password credentials and session tokens for the
// check-in service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
)

const minPasswordLength = 8

// Authenticator registers and verifies password-based accounts.
type Authenticator struct {
	users       domain.UserRepository
	adminEmails map[string]struct{}
}

// NewAuthenticator creates an authenticator. adminEmails is the allowlist
// of addresses that receive the admin role at registration; it is injected
// from configuration so deployments and tests can vary it.
func NewAuthenticator(users domain.UserRepository, adminEmails []string) *Authenticator {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allow[email] = struct{}{}
		}
	}
	return &Authenticator{users: users, adminEmails: allow}
}

// ValidatePassword checks the minimum password requirement.
func (a *Authenticator) ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a fresh loyalty record
// (points 0, no coupons, never checked in).
func (a *Authenticator) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := a.ValidatePassword(password); err != nil {
		return nil, err
	}
	if existing, err := a.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailInUse
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         a.roleFor(email),
		Points:       0,
		Coupons:      []domain.Coupon{},
		CreatedAt:    time.Now(),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password, returning the user if
// valid. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) roleFor(email string) domain.UserRole {
	if _, ok := a.adminEmails[email]; ok {
		return domain.UserRoleAdmin
	}
	return domain.UserRoleUser
}
