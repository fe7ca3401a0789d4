package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/cmdx"
	"github.com/spf13/cobra"
)

var envHelp = map[string]string{
	"short": "List of supported environment variables",
	"long": heredoc.Doc(`
		Every config key can be set through an environment variable prefixed
		with LINEAGE_, with dots replaced by underscores.

		LINEAGE_LOG_LEVEL: log level, one of debug, info, warn or error.

		LINEAGE_STORE_BACKEND: edge store, one of postgres, elasticsearch or memory.

		LINEAGE_DB_HOST, LINEAGE_DB_PORT, LINEAGE_DB_NAME: postgres connection.

		LINEAGE_ELASTICSEARCH_BROKERS: comma separated elasticsearch addresses.

		LINEAGE_WORKER_ENABLED: apply mutations through the async job queue.
	`),
}

func New(cfg *Config) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "lineage <command> <subcommand> [flags]",
		Short:         "Entity lineage graph",
		Long:          "Store typed relationships between entities and walk their lineage.",
		SilenceErrors: true,
		SilenceUsage:  false,
		Example: heredoc.Doc(`
		$ lineage migrate
		$ lineage edge upsert --source <urn> --destination <urn> --type DownstreamOf
		$ lineage related <urn> --direction OUTGOING
		$ lineage get <urn> --direction UPSTREAM --max-hops 3
		`),
		Annotations: map[string]string{
			"group": "core",
			"help:learn": heredoc.Doc(`
				Use 'lineage <command> --help' for info about a command.
			`),
			"help:feedback": heredoc.Doc(`
				Open an issue here https://github.com/goto/lineage/issues
			`),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString(configFlag)
			if cfgFile == "" {
				return nil
			}
			return LoadConfigFromFlag(cfgFile, cfg)
		},
	}

	rootCmd.AddCommand(
		configCommand(cfg),
		migrateCommand(cfg),
		edgeCommand(cfg),
		nodeCommand(cfg),
		relatedCommand(cfg),
		lineageCommand(cfg),
		workerCmd(cfg),
		versionCmd(),
	)

	// Help topics
	rootCmd.AddCommand(cmdx.SetCompletionCmd("lineage"))
	rootCmd.AddCommand(cmdx.SetRefCmd(rootCmd))
	rootCmd.AddCommand(cmdx.SetHelpTopicCmd("environment", envHelp))
	cmdx.SetHelp(rootCmd)

	rootCmd.PersistentFlags().StringP(configFlag, "c", "", "Override config file")

	return rootCmd
}
