package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/errors"
	pkgio "github.com/matzehuels/intentgraph/pkg/io"
)

// validateCommand checks that a tree file builds into a valid forest.
func (c *CLI) validateCommand() *cobra.Command {
	var confirmed []string

	cmd := &cobra.Command{
		Use:   "validate [tree.json]",
		Short: "Check that an intent tree builds into a valid graph",
		Long: `Check that an intent tree builds into a valid graph.

The tree is converted to a three-tier forest and every structural invariant
is checked: records are leaves, low intents sit under high intents, edges are
consistent and there are no cycles. A round trip through serialization must
reproduce the same shape.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], confirmed)
		},
	}
	cmd.Flags().StringSliceVar(&confirmed, "confirmed", nil, "labels confirmed in a previous build")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input string, confirmed []string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	f, err := c.readForest(input, confirmed)
	if err != nil {
		printError("%s", errors.UserMessage(err))
		return err
	}
	back, err := pkgio.BuildGraph(pkgio.Serialize(f), forest.NewLabelSet(confirmed...))
	if err != nil {
		return fmt.Errorf("rebuild serialized tree: %w", err)
	}
	if !pkgio.Isomorphic(f, back) {
		return errors.New(errors.ErrCodeInvariantViolation, "serialized tree does not round-trip")
	}
	prog.done(fmt.Sprintf("Validated %d nodes", f.NodeCount()))

	printSuccess("Tree is valid")
	if f.Scenario != "" {
		printKeyValue("Scenario", f.Scenario)
	}
	printForestStats(f)
	return nil
}

// readForest builds a forest from a tree file and lays it out with the
// configured options.
func (c *CLI) readForest(path string, confirmed []string) (*forest.Forest, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	f, err := pkgio.ReadTree(path, forest.NewLabelSet(confirmed...))
	if err != nil {
		return nil, err
	}
	layout.Apply(f, layout.Compute(f, cfg.Layout.Options()))
	return f, nil
}

// printForestStats prints node counts per tier.
func printForestStats(f *forest.Forest) {
	var counts [3]int
	confirmed := 0
	for _, n := range f.Nodes() {
		counts[n.Type.Tier()]++
		if n.Confirmed {
			confirmed++
		}
	}
	printStats(counts[0], counts[1], counts[2], confirmed)
}
