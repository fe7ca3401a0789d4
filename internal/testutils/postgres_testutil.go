package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/goto/lineage/internal/store/postgres"
	"github.com/goto/salt/log"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	logLevelDebug = "debug"
	PGHost        = "localhost"
	PGUsername    = "test_user"
	PGPassword    = "test_pass"
	PGName        = "test_db"
)

// RunTestPG starts a disposable postgres container and returns its port.
func RunTestPG(t *testing.T, logger log.Logger) (int, error) {
	t.Helper()

	c, err := startContainer(t, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "13",
		Env: []string{
			"POSTGRES_PASSWORD=" + PGPassword,
			"POSTGRES_USER=" + PGUsername,
			"POSTGRES_DB=" + PGName,
		},
	}, 120)
	if err != nil {
		return 0, fmt.Errorf("new test PG: %w", err)
	}

	port, err := strconv.Atoi(c.hostPort("5432/tcp"))
	if err != nil {
		return 0, fmt.Errorf("new test PG: parse external port of container to int: %w", err)
	}

	if logger.Level() == logLevelDebug {
		closeLogs, err := c.attachLogs(logger)
		if err != nil {
			return 0, fmt.Errorf("new test PG: %w", err)
		}
		defer closeLogs()
	}

	dsn := fmt.Sprintf(
		"dbname=%s user=%s password='%s' host=%s port=%d sslmode=disable",
		PGName, PGUsername, PGPassword, PGHost, port,
	)
	if err := c.waitReady(60*time.Second, func() error {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Ping()
	}); err != nil {
		return 0, fmt.Errorf("new test PG: could not connect: %w", err)
	}

	return port, nil
}

// attachLogs streams the container output to the logger until the returned
// func is called.
func (c *container) attachLogs(logger log.Logger) (func(), error) {
	logWaiter, err := c.pool.Client.AttachToContainerNonBlocking(docker.AttachToContainerOptions{
		Container:    c.resource.Container.ID,
		OutputStream: logger.Writer(),
		ErrorStream:  logger.Writer(),
		Stderr:       true,
		Stdout:       true,
		Stream:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("attach to container log output: %w", err)
	}

	return func() {
		if err := logWaiter.Close(); err != nil {
			logger.Error("could not close container log", "error", err)
		}
		if err := logWaiter.Wait(); err != nil {
			logger.Error("could not wait for container log to close", "error", err)
		}
	}, nil
}

func RunMigrations(t *testing.T, db *sql.DB) error {
	t.Helper()

	return RunMigrationsWithClient(t, postgres.NewClientWithDB(db))
}

func RunMigrationsWithClient(t *testing.T, pgClient *postgres.Client) error {
	t.Helper()

	queries := []string{
		"DROP SCHEMA public CASCADE",
		"CREATE SCHEMA public",
	}
	if err := pgClient.ExecQueries(context.Background(), queries); err != nil {
		return err
	}

	return pgClient.Migrate()
}

// TruncateTables empties tables so a suite can reuse one container.
func TruncateTables(t *testing.T, pgClient *postgres.Client, tables ...string) error {
	t.Helper()

	queries := make([]string, 0, len(tables))
	for _, table := range tables {
		queries = append(queries, "TRUNCATE TABLE "+table)
	}
	return pgClient.ExecQueries(context.Background(), queries)
}
