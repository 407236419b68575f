package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"orgmanager/internal/domain"
	"orgmanager/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TestDB holds the database connection for integration tests
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the migrations.
// The test is skipped when the variable is not set.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := database.DefaultConfig(connString)
	cfg.MaxConns = 4
	cfg.MinConns = 0
	pool, err := database.NewPool(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() {
			_, _ = pool.Exec(context.Background(), "TRUNCATE organizations CASCADE")
			pool.Close()
		},
	}
}

// NewTestOrganization builds an unsaved organization with a single admin.
func NewTestOrganization(t *testing.T, name string, opts ...domain.Option) *domain.Organization {
	t.Helper()

	org, err := domain.CreateFromAdmins(name, []domain.EmployeeData{
		{FirstName: "Test", LastName: "Admin", Email: "admin@" + name + ".test"},
	}, opts...)
	if err != nil {
		t.Fatalf("Failed to build test organization: %v", err)
	}
	return org
}

// SetupTestRedis connects to TEST_REDIS_ADDR on a scratch database that is
// flushed on cleanup. The test is skipped when the variable is not set.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Fatalf("Failed to connect to test redis: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		client.Close()
	})
	return client
}
