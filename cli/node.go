package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/core/graph"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

func nodeCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Manage nodes",
		Annotations: map[string]string{
			"group": "core",
		},
		Example: heredoc.Doc(`
			$ lineage node remove <urn> --type '*'
			$ lineage node remove <urn> --type DownstreamOf --direction OUTGOING
		`),
	}

	cmd.AddCommand(removeNodeCommand(cfg))

	return cmd
}

func removeNodeCommand(cfg *Config) *cobra.Command {
	var types []string
	var direction string

	cmd := &cobra.Command{
		Use:   "remove <urn>",
		Short: "Remove the edges incident to a node",
		Long: heredoc.Doc(`
			Remove every edge incident to the node that matches the relationship
			types and direction. At least one type is required; use '*' to
			match every relationship type.
		`),
		Example: heredoc.Doc(`
			$ lineage node remove urn:li:dataset:a --type DownstreamOf
			$ lineage node remove urn:li:dataset:a --type '*'
		`),
		Args: cobra.ExactArgs(1),
		Annotations: map[string]string{
			"action:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := graph.NewRelationshipFilter(graph.RelationshipDirection(direction), relationshipTypes(types)...)

			a, err := initApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.queue.EnqueueRemoveNodeJob(cmd.Context(), graph.URN(args[0]), filter); err != nil {
				return err
			}

			fmt.Println(term.Greenf("edges of %s %s", args[0], a.outcome("removed")))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "relationship types to remove, '*' for every type")
	cmd.Flags().StringVar(&direction, "direction", string(graph.DirectionUndirected), "INCOMING, OUTGOING or UNDIRECTED")

	return cmd
}

func relationshipTypes(types []string) []graph.RelationshipType {
	out := make([]graph.RelationshipType, 0, len(types))
	for _, t := range types {
		out = append(out, graph.RelationshipType(t))
	}
	return out
}
