package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "taskmind"
	pgPassword = "taskmind"
	pgDatabase = "taskmind"
)

// Postgres is a throwaway PostgreSQL container.
type Postgres struct {
	ConnStr   string
	container testcontainers.Container
}

// SetupPostgres starts a PostgreSQL container and terminates it when the test
// ends. The test is skipped unless TASKMIND_PG_TESTS=1, since it needs Docker.
func SetupPostgres(t *testing.T) *Postgres {
	t.Helper()
	if os.Getenv("TASKMIND_PG_TESTS") != "1" {
		t.Skip("set TASKMIND_PG_TESTS=1 to run PostgreSQL container tests")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port.Port(), pgUser, pgPassword, pgDatabase)

	// the port opens before initdb finishes its restart
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	defer conn.Close()
	for i := 0; ; i++ {
		if err = conn.Ping(); err == nil {
			break
		}
		if i == 9 {
			t.Fatalf("Failed to ping test DB after retries: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	return &Postgres{
		ConnStr:   connStr,
		container: container,
	}
}
