package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/log"
	"github.com/spf13/cobra"
)

const esMigrationTimeout = 30 * time.Second

func migrateCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run storage migration",
		Long: heredoc.Doc(`
			Migrate the postgres schema (edges, entities and the job queue) and,
			when the elasticsearch backend is configured, the edge index.
		`),
		Example: heredoc.Doc(`
			$ lineage migrate
			$ lineage migrate -c ./config.yaml
		`),
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), cfg)
		},
	}
}

func runMigrations(ctx context.Context, config *Config) error {
	logger := initLogger(config.LogLevel)
	logger.Info("lineage is migrating", "version", Version)

	if needsPostgres(config) {
		logger.Info("Migrating Postgres...")
		if err := migratePostgres(ctx, logger, config); err != nil {
			return err
		}
		logger.Info("Migration Postgres done.")
	}

	if config.Store.Backend == backendElasticsearch {
		logger.Info("Migrating ES...")
		if err := migrateElasticsearch(ctx, logger, config); err != nil {
			return err
		}
		logger.Info("Migration ES done.")
	}
	return nil
}

// needsPostgres reports whether postgres backs the edge store or the job
// queue.
func needsPostgres(config *Config) bool {
	switch config.Store.Backend {
	case backendPostgres, "":
		return true
	}
	return config.Worker.Enabled
}

func migratePostgres(ctx context.Context, logger log.Logger, config *Config) error {
	logger.Info("Initiating Postgres client...")

	pgClient, err := initPostgres(ctx, logger, config.DB)
	if err != nil {
		logger.Error("failed to prepare migration", "error", err)
		return err
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(); err != nil {
		return fmt.Errorf("problem with migration %w", err)
	}

	version, dirty, err := pgClient.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("postgres schema migrated", "version", version, "dirty", dirty)
	return nil
}

func migrateElasticsearch(ctx context.Context, logger log.Logger, config *Config) error {
	logger.Info("Initiating ES client...")
	esClient, err := initElasticsearch(logger, config.Elasticsearch)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, esMigrationTimeout)
	defer cancel()
	if err := esClient.Migrate(ctx); err != nil {
		return fmt.Errorf("error creating/updating edge index %q: %w", config.Elasticsearch.EdgeIndex, err)
	}
	logger.Info("created/updated edge index", "index", config.Elasticsearch.EdgeIndex)
	return nil
}
