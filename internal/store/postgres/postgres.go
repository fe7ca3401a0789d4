package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v4/stdlib" // register pgx driver
	"github.com/jmoiron/sqlx"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

//go:embed migrations/*.sql
var fs embed.FS

const (
	pgDriverName = "pgx"

	edgesTable    = "edges"
	entitiesTable = "entities"
)

type Client struct {
	db *sqlx.DB
}

// NewClient opens an instrumented connection pool to the database
// described by cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	driverName, err := otelsql.Register(
		pgDriverName,
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
		otelsql.WithInstanceName("lineage"),
	)
	if err != nil {
		return nil, fmt.Errorf("new postgres client: %w", err)
	}

	db, err := sql.Open(driverName, cfg.ConnectionURL().String())
	if err != nil {
		return nil, fmt.Errorf("new postgres client: %w", err)
	}
	if db == nil {
		return nil, errNilDBClient
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("new postgres client: error connecting DB: %w", err)
	}

	if err := otelsql.RecordStats(
		db,
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
		otelsql.WithInstanceName("lineage"),
	); err != nil {
		return nil, fmt.Errorf("new postgres client: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return NewClientWithDB(db), nil
}

func NewClientWithDB(db *sql.DB) *Client {
	return &Client{db: sqlx.NewDb(db, pgDriverName)}
}

func (c *Client) RunWithinTx(ctx context.Context, f func(tx *sqlx.Tx) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if err := f(tx); err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return fmt.Errorf("rollback transaction error: %v (original error: %w)", txErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Migrate applies every pending up migration.
func (c *Client) Migrate() error {
	m, err := c.initMigration()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrateDown reverts the latest migration.
func (c *Client) MigrateDown() error {
	m, err := c.initMigration()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (c *Client) MigrationVersion() (uint, bool, error) {
	m, err := c.initMigration()
	if err != nil {
		return 0, false, err
	}

	ver, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return ver, dirty, err
}

// ExecQueries is used for executing list of db query
func (c *Client) ExecQueries(ctx context.Context, queries []string) error {
	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) initMigration() (*migrate.Migrate, error) {
	iofsDriver, err := iofs.New(fs, "migrations")
	if err != nil {
		return nil, fmt.Errorf("init migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(c.db.DB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("init migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", iofsDriver, "postgres", dbDriver)
}
