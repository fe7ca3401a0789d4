package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/core/graph"
	"github.com/goto/salt/printer"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

func relatedCommand(cfg *Config) *cobra.Command {
	var (
		types, sourceTypes, destinationTypes []string
		direction, output                    string
		offset, count                        int
	)

	cmd := &cobra.Command{
		Use:   "related <urn>",
		Short: "List the entities one hop away from a node",
		Example: heredoc.Doc(`
			$ lineage related urn:li:dataset:a --direction OUTGOING --type DownstreamOf
			$ lineage related urn:li:dataset:a --count 10 --offset 20 -o json
		`),
		Args: cobra.ExactArgs(1),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.graph.FindRelatedEntities(cmd.Context(), graph.URN(args[0]), graph.RelatedEntitiesQuery{
				Filter:           graph.NewRelationshipFilter(graph.RelationshipDirection(direction), relationshipTypes(types)...),
				SourceTypes:      sourceTypes,
				DestinationTypes: destinationTypes,
				Offset:           offset,
				Count:            count,
			})
			if err != nil {
				return err
			}

			if output == outputJSON {
				fmt.Println(term.Bluef(prettyPrint(res)))
				return nil
			}

			report := [][]string{{"URN", "RELATIONSHIP"}}
			for _, e := range res.Entities {
				report = append(report, []string{string(e.URN), string(e.Type)})
			}
			printer.Table(os.Stdout, report)
			fmt.Println(term.Cyanf("showing %d of %d entities starting at %s", res.Count, res.Total, strconv.Itoa(res.Start)))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "relationship types, all when empty")
	cmd.Flags().StringVar(&direction, "direction", string(graph.DirectionUndirected), "INCOMING, OUTGOING or UNDIRECTED")
	cmd.Flags().StringSliceVar(&sourceTypes, "source-type", nil, "entity types allowed at the edge source")
	cmd.Flags().StringSliceVar(&destinationTypes, "destination-type", nil, "entity types allowed at the edge destination")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of entities to skip")
	cmd.Flags().IntVar(&count, "count", 0, "page size, 0 returns every entity")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format, table or json")

	return cmd
}
