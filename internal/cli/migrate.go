package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"daily-quiz-service/internal/config"
	pgmigrations "daily-quiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

var errPostgresNotConfigured = errors.New("postgres url not configured")

// NewMigrateCmd applies the quiz, OTP request and lead table migrations, or rolls
// back the last applied group with --rollback.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if rollback {
				return rollbackMigrations(cmd.Context(), cfg)
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

// runMigrationsWithConfig is also called by start, so replicas booting together
// serialize on the migration lock.
func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	return withMigrator(ctx, cfg, func(m *migrate.Migrator) error {
		group, err := m.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if group.IsZero() {
			log.Printf("migrations: schema up to date")
			return nil
		}
		log.Printf("migrations: applied %s", group)
		return nil
	})
}

func rollbackMigrations(ctx context.Context, cfg config.Config) error {
	return withMigrator(ctx, cfg, func(m *migrate.Migrator) error {
		group, err := m.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		if group.IsZero() {
			log.Printf("migrations: nothing to roll back")
			return nil
		}
		log.Printf("migrations: rolled back %s", group)
		return nil
	})
}

func withMigrator(ctx context.Context, cfg config.Config, fn func(*migrate.Migrator) error) error {
	if cfg.Postgres.URL == "" {
		return errPostgresNotConfigured
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	m := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := m.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		if err := m.Unlock(ctx); err != nil {
			log.Printf("migrations: unlock failed: %v", err)
		}
	}()
	return fn(m)
}
