package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgutil "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/postgres"
)

// PostgresImage is the server version the assessment store is tested against.
const PostgresImage = "postgres:16-alpine"

// PostgresContainer is a disposable database for integration tests.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts PostgreSQL, connects a pool through
// pgutil.NewPool and registers teardown with t.Cleanup.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	container, err := postgres.Run(ctx, PostgresImage,
		postgres.WithDatabase("risk_engine"),
		postgres.WithUsername("risk"),
		postgres.WithPassword("risk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	pc := &PostgresContainer{Container: container}
	t.Cleanup(func() { pc.terminate(t) })

	pc.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pc.Pool, err = pgutil.NewPool(ctx, pgutil.Config{URL: pc.DSN, MaxConns: 4, ConnectAttempts: 3})
	if err != nil {
		t.Fatalf("connect to postgres container: %v", err)
	}
	return pc
}

// Migrate applies every pending migration in dir through golang-migrate.
func (pc *PostgresContainer) Migrate(t *testing.T, dir string) {
	t.Helper()
	if err := pgutil.RunMigrations(pc.DSN, dir); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

// MigrateDown reverts every migration in dir.
func (pc *PostgresContainer) MigrateDown(t *testing.T, dir string) {
	t.Helper()
	if err := pgutil.RunMigrationsDown(pc.DSN, dir); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
}

// Truncate empties tables between subtests that share one container.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmt := fmt.Sprintf("TRUNCATE %s", strings.Join(tables, ", "))
	if _, err := pc.Pool.Exec(ctx, stmt); err != nil {
		t.Fatalf("truncate %v: %v", tables, err)
	}
}

func (pc *PostgresContainer) terminate(t *testing.T) {
	if pc.Pool != nil {
		pc.Pool.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("terminate postgres container: %v", err)
	}
}
