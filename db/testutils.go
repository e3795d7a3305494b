package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"backstage/pubsub/outbox"
)

var (
	testDB    *sqlx.DB
	testDBErr error
	getDbOnce sync.Once
)

// GetDb connects to POSTGRES_URL, or to a throwaway container when it is not set, and
// initializes the schema once per test binary.
func GetDb(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("postgres tests are skipped in short mode")
	}

	getDbOnce.Do(func() {
		url := os.Getenv("POSTGRES_URL")
		if url == "" {
			_, url = StartPostgresContainer()
		}

		testDB, testDBErr = sqlx.Open("postgres", url)
		if testDBErr != nil {
			return
		}

		testDBErr = InitializeDatabaseSchema(testDB)
		if testDBErr != nil {
			return
		}

		// creates the outbox table
		_, testDBErr = outbox.NewPostgresSubscriber(testDB, watermill.NopLogger{})
	})
	require.NoError(t, testDBErr)

	return testDB
}

func StartPostgresContainer() (testcontainers.Container, string) {
	ctx := context.Background()
	dbName := "db"
	dbUser := "user"
	dbPassword := "password"

	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		panic(err)
	}

	return postgresContainer, connStr
}
