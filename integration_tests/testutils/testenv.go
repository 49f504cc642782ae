//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/Black-And-White-Club/campscore/integration_tests/containers"

	activitymigrations "github.com/Black-And-White-Club/campscore/app/modules/activity/infrastructure/repositories/migrations"
	clubmigrations "github.com/Black-And-White-Club/campscore/app/modules/club/infrastructure/repositories/migrations"
	criteriamigrations "github.com/Black-And-White-Club/campscore/app/modules/criteria/infrastructure/repositories/migrations"
	evaluationmigrations "github.com/Black-And-White-Club/campscore/app/modules/evaluation/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/campscore/app/modules/user/infrastructure/repositories/migrations"
)

// TestEnvironment holds a migrated Postgres shared by a test package.
type TestEnvironment struct {
	Ctx         context.Context
	Cancel      context.CancelFunc
	PgContainer *postgres.PostgresContainer
	DSN         string
	DB          *bun.DB
}

// NewTestEnvironment starts Postgres and applies every migration.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	env := &TestEnvironment{Ctx: ctx, Cancel: cancel, PgContainer: pgContainer, DSN: dsn, DB: db}

	if err := env.runMigrations(ctx); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return env, nil
}

func (env *TestEnvironment) runMigrations(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, env.DSN)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	riverMigrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := riverMigrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"user", usermigrations.Migrations},
		{"criteria", criteriamigrations.Migrations},
		{"club", clubmigrations.Migrations},
		{"activity", activitymigrations.Migrations},
		{"evaluation", evaluationmigrations.Migrations},
	}
	for _, mod := range ordered {
		migrator := migrate.NewMigrator(env.DB, mod.migrations,
			migrate.WithTableName("bun_migrations_"+mod.name),
			migrate.WithLocksTableName("bun_migration_locks_"+mod.name),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", mod.name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.name, err)
		}
		log.Printf("Ran %s migrations group #%d", mod.name, group.ID)
	}
	return nil
}

var appTables = []string{"users", "criteria_overrides", "clubs", "activity_logs", "evaluated_criteria"}

// CleanupDatabase truncates every application table and the River job table.
func (env *TestEnvironment) CleanupDatabase(ctx context.Context) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := env.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	if _, err := env.DB.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to cleanup river jobs: %w", err)
	}
	return nil
}

// Cleanup closes the database and terminates the container.
func (env *TestEnvironment) Cleanup() {
	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(context.Background()); err != nil {
			log.Printf("Error terminating postgres container: %v", err)
		}
	}
	env.Cancel()
}
