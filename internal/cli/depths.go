package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/pkg/pipeline"
	"github.com/matzehuels/tanglestat/pkg/tangle"
)

// depthsCommand creates the depths command.
func (c *CLI) depthsCommand() *cobra.Command {
	var (
		asJSON bool
		levels bool
	)

	cmd := &cobra.Command{
		Use:   "depths [file]",
		Short: "Print the depth of every transaction",
		Long: `Print the depth of every transaction, one "index depth" pair per line.

The origin has depth 0. With --levels, print the number of transactions at
each depth instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			// No cache: depths are not part of the cached report.
			t, err := pipeline.NewRunner(nil, nil, c.Logger).Load(cmd.Context(), sourceName(args[0]), data)
			if err != nil {
				return err
			}
			return writeDepths(cmd.OutOrStdout(), t, asJSON, levels)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array")
	cmd.Flags().BoolVar(&levels, "levels", false, "print transactions per depth level")

	return cmd
}

func writeDepths(w io.Writer, t *tangle.Tangle, asJSON, levels bool) error {
	vals, err := t.Depths()
	if err != nil {
		return err
	}
	if levels {
		vals = t.LevelWidths()
	}

	if asJSON {
		return json.NewEncoder(w).Encode(vals)
	}
	for i, v := range vals {
		if _, err := fmt.Fprintf(w, "%d %d\n", i, v); err != nil {
			return err
		}
	}
	return nil
}
