// Package repo contains PostgreSQL-backed implementations of the domain
// repository interfaces.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

const uniqueViolation = "23505"

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
// The coupon sequence is stored as a jsonb array on the user row; the
// whole loyalty state of a user lives in one row so the conditional
// update in UpdateLoyalty covers points, coupons, and last check-in
// together.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// Create inserts a new user with its initial loyalty record.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	coupons, err := marshalCoupons(user.Coupons)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertUser,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Points,
		coupons,
		user.LastCheckIn,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailInUse
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail fetches a user by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// ListAll returns every user record, highest points first.
func (r *UserRepositoryPG) ListAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectAllUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateLoyalty writes the points/coupons/last-check-in trio, but only if
// the stored values still match the snapshot the caller computed from.
// The coupon array is part of the precondition: a redemption changes
// neither points nor last check-in, so without it two admins redeeming
// different coupons of the same user could silently undo each other.
// Returns domain.ErrWriteConflict when a concurrent writer got there
// first; the caller is expected to re-read and retry.
func (r *UserRepositoryPG) UpdateLoyalty(ctx context.Context, updated *domain.User, expectedPoints int, expectedCoupons []domain.Coupon, expectedLastCheckIn *time.Time) error {
	coupons, err := marshalCoupons(updated.Coupons)
	if err != nil {
		return err
	}
	prevCoupons, err := marshalCoupons(expectedCoupons)
	if err != nil {
		return err
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateLoyalty,
		updated.ID,
		updated.Points,
		coupons,
		updated.LastCheckIn,
		expectedPoints,
		prevCoupons,
		expectedLastCheckIn,
	)
	if err != nil {
		return fmt.Errorf("update loyalty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWriteConflict
	}
	return nil
}

// SetRole updates the user's role.
func (r *UserRepositoryPG) SetRole(ctx context.Context, id string, role domain.UserRole) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetRole, id, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Stats aggregates totals for the admin dashboard.
type Stats struct {
	TotalUsers      int64
	TotalCheckIns   int64
	CouponsIssued   int64
	CouponsRedeemed int64
}

// StatsSummary returns whole-venue totals.
func (r *UserRepositoryPG) StatsSummary(ctx context.Context) (*Stats, error) {
	var s Stats
	row := r.sql.QueryRow(ctx, sqlinline.QStatsSummary)
	if err := row.Scan(&s.TotalUsers, &s.TotalCheckIns, &s.CouponsIssued, &s.CouponsRedeemed); err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}
	return &s, nil
}

func marshalCoupons(coupons []domain.Coupon) ([]byte, error) {
	if coupons == nil {
		coupons = []domain.Coupon{}
	}
	b, err := json.Marshal(coupons)
	if err != nil {
		return nil, fmt.Errorf("marshal coupons: %w", err)
	}
	return b, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var coupons []byte
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Points, &coupons, &u.LastCheckIn, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(coupons, &u.Coupons); err != nil {
		return nil, fmt.Errorf("decode coupons: %w", err)
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
