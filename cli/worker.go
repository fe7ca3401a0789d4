package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/goto/lineage/pkg/telemetry"
	"github.com/spf13/cobra"
)

func workerCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker <command>",
		Short: "Run lineage worker",
		Long:  "Worker management commands.",
		Example: heredoc.Doc(`
			$ lineage worker start
			$ lineage worker start -c ./config.yaml
		`),
	}

	cmd.AddCommand(workerStartCommand(cfg))

	return cmd
}

func workerStartCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Short:   "Start applying queued graph mutations and serve the dead job API on the job manager port",
		Example: "lineage worker start",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runWorker(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("run worker: %w", err)
			}
			return nil
		},
	}
}

func runWorker(ctx context.Context, cfg *Config) error {
	if !cfg.Worker.Enabled {
		return errors.New("worker is disabled")
	}

	logger := initLogger(cfg.LogLevel)
	logger.Info("lineage worker starting", "version", Version)

	telCfg := cfg.Telemetry
	telCfg.AppVersion = Version
	tel, err := telemetry.Init(ctx, telCfg, logger)
	if err != nil {
		return err
	}
	defer tel.Close()

	// The worker applies mutations itself; only the graph service is
	// taken from the app.
	appCfg := *cfg
	appCfg.Worker.Enabled = false
	a, err := initApp(ctx, &appCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	mgr, err := workermanager.New(ctx, workermanager.Deps{
		Config: cfg.Worker,
		Graph:  a.graph,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Error("Close worker manager", "err", err)
		}
	}()

	return mgr.Run(ctx)
}
