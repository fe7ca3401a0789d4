package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/core/graph"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

func edgeCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edge",
		Aliases: []string{"edges"},
		Short:   "Manage edges",
		Annotations: map[string]string{
			"group": "core",
		},
		Example: heredoc.Doc(`
			$ lineage edge upsert --source <urn> --destination <urn> --type DownstreamOf
			$ lineage edge upsert --file edge.yaml
			$ lineage edge remove --source <urn> --destination <urn> --type DownstreamOf
		`),
	}

	cmd.AddCommand(
		upsertEdgeCommand(cfg),
		removeEdgeCommand(cfg),
	)

	return cmd
}

func upsertEdgeCommand(cfg *Config) *cobra.Command {
	var source, destination, relType, props, filePath string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create an edge or replace its properties",
		Example: heredoc.Doc(`
			$ lineage edge upsert --source urn:li:dataset:a --destination urn:li:dataset:b --type DownstreamOf --properties job:etl
		`),
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"action:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var edge graph.Edge
			if filePath != "" {
				if err := parseFile(filePath, &edge); err != nil {
					return err
				}
			} else {
				properties, err := makeMapFromString(props)
				if err != nil {
					return err
				}
				edge = graph.Edge{
					Source:      graph.URN(source),
					Destination: graph.URN(destination),
					Type:        graph.RelationshipType(relType),
					Properties:  properties,
				}
			}

			a, err := initApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.queue.EnqueueUpsertEdgeJob(cmd.Context(), edge); err != nil {
				return err
			}

			fmt.Println(term.Greenf("edge (%s)-[%s]->(%s) %s", edge.Source, edge.Type, edge.Destination, a.outcome("upserted")))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "JSON or YAML file describing the edge")
	bindEdgeKeyFlags(cmd, &source, &destination, &relType)
	cmd.Flags().StringVarP(&props, "properties", "p", "", "edge properties as key:value pairs separated by comma")

	return cmd
}

func removeEdgeCommand(cfg *Config) *cobra.Command {
	var source, destination, relType string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an edge",
		Example: heredoc.Doc(`
			$ lineage edge remove --source urn:li:dataset:a --destination urn:li:dataset:b --type DownstreamOf
		`),
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"action:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := graph.EdgeKey{
				Source:      graph.URN(source),
				Destination: graph.URN(destination),
				Type:        graph.RelationshipType(relType),
			}

			a, err := initApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.queue.EnqueueRemoveEdgeJob(cmd.Context(), key); err != nil {
				return err
			}

			fmt.Println(term.Greenf("edge (%s)-[%s]->(%s) %s", key.Source, key.Type, key.Destination, a.outcome("removed")))
			return nil
		},
	}

	bindEdgeKeyFlags(cmd, &source, &destination, &relType)
	for _, name := range []string{"source", "destination", "type"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func bindEdgeKeyFlags(cmd *cobra.Command, source, destination, relType *string) {
	cmd.Flags().StringVarP(source, "source", "s", "", "source entity urn")
	cmd.Flags().StringVarP(destination, "destination", "d", "", "destination entity urn")
	cmd.Flags().StringVarP(relType, "type", "t", "", "relationship type")
}
