// Command grantadmin promotes or demotes a user's role directly in the
// database. Intended for operators bootstrapping the first admin account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/infra"
)

func main() {
	var (
		idFlag    string
		emailFlag string
		roleFlag  string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&roleFlag, "role", "admin", "role to assign (admin, user)")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(strings.ToLower(emailFlag))
	role := domain.UserRole(strings.TrimSpace(strings.ToLower(roleFlag)))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	switch role {
	case domain.UserRoleAdmin, domain.UserRoleUser:
	default:
		exitWithError(fmt.Errorf("unsupported role %q", role))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("connect database: %w", err))
	}
	defer pool.Close()

	users := repo.NewUserRepository(infra.NewSQLRunner(pool, zerolog.Nop()))

	if userID == "" {
		user, err := users.GetByEmail(ctx, email)
		if err != nil {
			exitWithError(fmt.Errorf("lookup %s: %w", email, err))
		}
		userID = user.ID
	}

	if err := users.SetRole(ctx, userID, role); err != nil {
		exitWithError(fmt.Errorf("set role: %w", err))
	}

	fmt.Printf("user %s is now role %q\n", userID, role)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
