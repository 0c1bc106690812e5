package integration

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/coreforge/bnetrest/internal/auth"
	"github.com/coreforge/bnetrest/internal/database"
)

// TestDB manages the PostgreSQL testcontainer for integration tests.
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase starts a PostgreSQL container and runs all migrations.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("bnetrest"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	goose.SetLogger(log.New(io.Discard, "", 0))

	// Goose needs a database/sql connection; adapt the pgx config.
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool.
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation.
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"game_account_bans",
		"game_accounts",
		"ip_bans",
		"battlenet_account_bans",
		"battlenet_accounts",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// UniqueEmail returns an address no other test run has used.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// SeedBnetAccount inserts an account the way the real credential pipeline
// stores it: normalized login, two-stage digest.
func SeedBnetAccount(ctx context.Context, pool *pgxpool.Pool, email, password string) (uint32, string, error) {
	login := auth.UpperOnlyLatin(email)
	hash := auth.CalculateShaPassHash(login, auth.UpperOnlyLatin(password))

	var id uint32
	err := pool.QueryRow(ctx,
		`INSERT INTO battlenet_accounts (email, sha_pass_hash) VALUES ($1, $2) RETURNING id`,
		login, hash,
	).Scan(&id)
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert account: %w", err)
	}

	return id, login, nil
}

// SeedGameAccount binds a game account to a battle.net account.
func SeedGameAccount(ctx context.Context, pool *pgxpool.Pool, accountID uint32, name string, expansion uint32) (uint32, error) {
	var id uint32
	err := pool.QueryRow(ctx,
		`INSERT INTO game_accounts (name, battlenet_account_id, expansion) VALUES ($1, $2, $3) RETURNING id`,
		name, accountID, expansion,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert game account: %w", err)
	}

	return id, nil
}

// SeedGameAccountBan attaches a ban row to a game account.
func SeedGameAccountBan(ctx context.Context, pool *pgxpool.Pool, gameAccountID uint32, banDate, unbanDate int64, reason string) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO game_account_bans (game_account_id, ban_date, unban_date, ban_reason) VALUES ($1, $2, $3, $4)`,
		gameAccountID, banDate, unbanDate, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game account ban: %w", err)
	}
	return nil
}
