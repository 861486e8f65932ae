package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"server/internal/domain"
)

type memoryRepo struct {
	domain.UserRepository
	byEmail map[string]*domain.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memoryRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrEmailInUse
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *memoryRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewAuthenticator(newMemoryRepo(), nil)
	ctx := context.Background()

	user, err := a.Register(ctx, "Alice@Example.com", " Alice ", "correct-horse")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Name != "Alice" {
		t.Fatalf("name not trimmed: %q", user.Name)
	}
	if user.Points != 0 || len(user.Coupons) != 0 || user.LastCheckIn != nil {
		t.Fatalf("fresh record not empty: %+v", user)
	}
	if user.Role != domain.UserRoleUser {
		t.Fatalf("role = %q, want user", user.Role)
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	got, err := a.Authenticate(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("Authenticate returned %q, want %q", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	a := NewAuthenticator(newMemoryRepo(), nil)
	if _, err := a.Register(context.Background(), "a@example.com", "A", "short"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("error = %v, want ErrWeakPassword", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := NewAuthenticator(newMemoryRepo(), nil)
	ctx := context.Background()
	if _, err := a.Register(ctx, "a@example.com", "A", "long-enough"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := a.Register(ctx, "A@example.com", "A2", "long-enough"); !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("error = %v, want ErrEmailInUse", err)
	}
}

func TestRegisterAdminAllowlist(t *testing.T) {
	a := NewAuthenticator(newMemoryRepo(), []string{" Desk@Venue.com ", ""})
	user, err := a.Register(context.Background(), "desk@venue.com", "Desk", "long-enough")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.UserRoleAdmin {
		t.Fatalf("role = %q, want admin", user.Role)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@example.com", Role: domain.UserRoleAdmin}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token does not look like a JWT: %q", token)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@example.com" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Generate(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestJWTExpired(t *testing.T) {
	token, err := NewJWTManager("secret", -time.Minute).Generate(&domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := NewJWTManager("secret", -time.Minute).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify of expired token = %v, want ErrInvalidToken", err)
	}
}
