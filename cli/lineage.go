package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/lineage/core/graph"
	"github.com/goto/salt/printer"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

const defaultLineagePageSize = 100

func lineageCommand(cfg *Config) *cobra.Command {
	var (
		types, entityTypes     []string
		direction, output      string
		maxHops, offset, count int
	)

	cmd := &cobra.Command{
		Use:   "get <urn>",
		Short: "Walk the lineage of an entity",
		Example: heredoc.Doc(`
			$ lineage get urn:li:dataset:a --direction UPSTREAM
			$ lineage get urn:li:dataset:a --direction DOWNSTREAM --max-hops 3 --entity-type dataset
		`),
		Args: cobra.ExactArgs(1),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			spinner := printer.Spin("")
			defer spinner.Stop()

			a, err := initApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.graph.GetLineage(cmd.Context(), graph.URN(args[0]), graph.LineageQuery{
				Direction:         graph.LineageDirection(strings.ToUpper(direction)),
				Offset:            offset,
				Count:             count,
				MaxHops:           maxHops,
				RelationshipTypes: relationshipTypes(types),
				EntityTypes:       entityTypes,
			})
			if err != nil {
				return err
			}
			spinner.Stop()

			if output == outputJSON {
				fmt.Println(term.Bluef(prettyPrint(res)))
				return nil
			}

			report := [][]string{{"DEGREE", "URN", "RELATIONSHIP", "PATH"}}
			for _, r := range res.Relationships {
				path := make([]string, 0, len(r.Path))
				for _, u := range r.Path {
					path = append(path, string(u))
				}
				report = append(report, []string{strconv.Itoa(r.Degree), string(r.URN), string(r.Type), strings.Join(path, " > ")})
			}
			printer.Table(os.Stdout, report)
			fmt.Println(term.Cyanf("showing %d of %d relationships", res.Count, res.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", string(graph.LineageDirectionDownstream), "UPSTREAM or DOWNSTREAM")
	cmd.Flags().IntVar(&maxHops, "max-hops", 1, "number of hops to walk")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "narrow the lineage relationship types")
	cmd.Flags().StringSliceVar(&entityTypes, "entity-type", nil, "entity types reachable at every hop")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of relationships to skip")
	cmd.Flags().IntVar(&count, "count", defaultLineagePageSize, "page size")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format, table or json")

	return cmd
}
