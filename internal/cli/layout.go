package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/graph"
)

// layoutCommand computes node positions for a tree file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		orientation string
		width       float64
		height      float64
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute node positions for an orientation and viewport",
		Long: `Compute node positions for an orientation and viewport.

Stacked places high intents on the top tier, low intents below them and
records at the bottom. Columnar uses left-to-right tiers instead. With a
viewport the spacing scales to fit the widest tier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, orientation, layout.Viewport{Width: width, Height: height})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "stacked or columnar (default from config)")
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output, orientation string, vp layout.Viewport) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.Layout.Options()
	if orientation != "" {
		if opts.Orientation, err = layout.ParseOrientation(orientation); err != nil {
			return err
		}
	}
	if vp.Width > 0 || vp.Height > 0 {
		opts.Viewport = vp
	}

	f, err := c.readForest(input, nil)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	prog := newProgress(loggerFromContext(ctx))
	pos := layout.Compute(f, opts)
	prog.done(fmt.Sprintf("Laid out %d nodes (%s)", len(pos), opts.Orientation))

	w, closeFn, err := c.output(output)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(graph.FromPositions(pos, opts)); err != nil {
		closeFn()
		return fmt.Errorf("write layout: %w", err)
	}
	return closeFn()
}
