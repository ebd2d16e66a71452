package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/graph"
)

// buildCommand converts a tree into the node-link graph format.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output    string
		confirmed []string
	)

	cmd := &cobra.Command{
		Use:   "build [tree.json]",
		Short: "Convert an intent tree into a node-link graph",
		Long: `Convert an intent tree into a node-link graph.

The output lists every node with its type, label, confirmation state and
laid-out position, and every edge with its confirmation state. Pass
--confirmed to carry confirmations over from an earlier build.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output, confirmed)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringSliceVar(&confirmed, "confirmed", nil, "labels confirmed in a previous build")
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input, output string, confirmed []string) error {
	prog := newProgress(loggerFromContext(ctx))

	f, err := c.readForest(input, confirmed)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	w, closeFn, err := c.output(output)
	if err != nil {
		return err
	}
	if err := graph.Write(f, w); err != nil {
		closeFn()
		return fmt.Errorf("write graph: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes", f.NodeCount()))

	if output != "" && output != "-" {
		printSuccess("Graph built")
		printFile(output)
		printForestStats(f)
		printNextStep("Render", "intentgraph render "+input)
	}
	return nil
}
