package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/core/graph"
	esStore "github.com/goto/lineage/internal/store/elasticsearch"
	"github.com/goto/lineage/internal/store/memory"
	"github.com/goto/lineage/internal/store/postgres"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/goto/lineage/pkg/statsd"
	"github.com/goto/lineage/pkg/telemetry"
	"github.com/goto/salt/cmdx"
	"github.com/goto/salt/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const configFlag = "config"

func configCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage lineage configuration",
		Example: heredoc.Doc(`
			$ lineage config init
			$ lineage config list`),
	}

	cmd.AddCommand(configInitCommand())
	cmd.AddCommand(configListCommand(cfg))

	return cmd
}

func configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Example: heredoc.Doc(`
			$ lineage config init
		`),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdx.SetConfig("lineage")

			if err := cfg.Init(&Config{}); err != nil {
				return err
			}

			fmt.Printf("config created: %v\n", cfg.File())
			return nil
		},
	}
}

func configListCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configuration settings",
		Example: heredoc.Doc(`
			$ lineage config list
		`),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return yaml.NewEncoder(os.Stdout).Encode(*cfg)
		},
	}
}

const (
	backendPostgres      = "postgres"
	backendElasticsearch = "elasticsearch"
	backendMemory        = "memory"
)

type StoreConfig struct {
	// Backend is one of postgres, elasticsearch or memory.
	Backend string        `yaml:"backend" mapstructure:"backend" default:"postgres"`
	Memory  memory.Config `yaml:"memory" mapstructure:"memory"`
}

type LineageConfig struct {
	// Registry lists the lineage bearing relationship types. Empty means
	// every type carries lineage.
	Registry       []graph.LineageSpec `yaml:"registry" mapstructure:"registry"`
	MaxConcurrency int                 `yaml:"max_concurrency" mapstructure:"max_concurrency" default:"8"`
	MaxHops        int                 `yaml:"max_hops" mapstructure:"max_hops" default:"10"`
}

type Config struct {
	// Log
	LogLevel string `yaml:"log_level" mapstructure:"log_level" default:"info"`

	// Edge store
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// Database
	DB postgres.Config `yaml:"db" mapstructure:"db"`

	// Elasticsearch
	Elasticsearch esStore.Config `yaml:"elasticsearch" mapstructure:"elasticsearch"`

	// Lineage traversal
	Lineage LineageConfig `yaml:"lineage" mapstructure:"lineage"`

	// Worker
	Worker workermanager.Config `yaml:"worker" mapstructure:"worker"`

	// StatsD
	StatsD statsd.Config `yaml:"statsd" mapstructure:"statsd"`

	// Telemetry
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := cmdx.SetConfig("lineage").Load(&cfg)
	if err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			return LoadFromCurrentDir()
		}
		return &cfg, err
	}
	return &cfg, nil
}

func LoadFromCurrentDir() (*Config, error) {
	var cfg Config
	var opts []config.LoaderOption

	opts = append(opts,
		config.WithPath("./"),
		config.WithName("lineage.yaml"),
		config.WithEnvKeyReplacer(".", "_"),
		config.WithEnvPrefix("LINEAGE"),
	)

	if err := config.NewLoader(opts...).Load(&cfg); err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			return &cfg, ErrConfigNotFound
		}
		return &cfg, err
	}
	return &cfg, nil
}

func LoadConfigFromFlag(cfgFile string, cfg *Config) error {
	var opts []config.LoaderOption
	opts = append(opts,
		config.WithFile(cfgFile),
		config.WithEnvKeyReplacer(".", "_"),
		config.WithEnvPrefix("LINEAGE"),
	)

	return config.NewLoader(opts...).Load(cfg)
}
