package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"quiz-backend/internal/app"
	"quiz-backend/internal/config"
	"quiz-backend/internal/domain"
	"quiz-backend/internal/infra/memory"
	pgrepo "quiz-backend/internal/infra/postgres"
	"quiz-backend/internal/logger"
)

// NewSeedAdminCmd creates (or refreshes) the admin account from
// ADMIN_EMAIL / ADMIN_PASSWORD. One-time process glue, kept out of the core.
func NewSeedAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			return seedAdmin(cmd.Context(), pgrepo.NewUserRepository(pool), logger.New("quiz-backend"))
		},
	}
}

func seedAdmin(ctx context.Context, users app.UserRepository, log *logrus.Entry) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin, err := users.Upsert(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.WithField("email", admin.Email).Info("admin account seeded")
	return nil
}

// seedDemoAdmin seeds the in-memory store when demo mode has admin
// credentials in the environment; without them auth has no users to accept.
func seedDemoAdmin(ctx context.Context, store *memory.Store, log *logrus.Entry) {
	if os.Getenv("ADMIN_EMAIL") == "" || os.Getenv("ADMIN_PASSWORD") == "" {
		return
	}
	if err := seedAdmin(ctx, store.Users(), log); err != nil {
		log.WithError(err).Warn("demo admin seeding failed")
	}
}
