package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/core/drag"
	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// dragCommand simulates a drag along a pointer path and reports the drop.
func (c *CLI) dragCommand() *cobra.Command {
	var path []string

	cmd := &cobra.Command{
		Use:   "drag [tree.json] [node] --to x,y [--to x,y ...]",
		Short: "Simulate dragging a node along a pointer path",
		Long: `Simulate dragging a node along a pointer path.

The node and its subtree follow each --to point in turn. After every move the
nearest colliding intent is reported as the drop candidate. At the end the
pending drop and its allowed operations are printed; nothing is changed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := make([]forest.Point, len(path))
			for i, s := range path {
				p, err := parsePoint(s)
				if err != nil {
					return err
				}
				points[i] = p
			}
			return c.runDrag(cmd.Context(), args[0], args[1], points)
		},
	}
	cmd.Flags().StringArrayVar(&path, "to", nil, "pointer position as x,y (repeatable)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *CLI) runDrag(ctx context.Context, input, ref string, points []forest.Point) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f, err := c.readForest(input, nil)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	n, err := resolveNode(f, ref)
	if err != nil {
		return err
	}
	label, from := n.Label, n.Position

	s, err := drag.Begin(f, n.ID, cfg.Drag.Options())
	if err != nil {
		return err
	}
	printInfo("Dragging %q from (%.0f, %.0f) with %d nodes", label, from.X, from.Y, len(s.Subtree()))
	for _, p := range points {
		if id, ok := s.Update(p); ok {
			cn, _ := f.Node(id)
			printDetail("(%.0f, %.0f) over %q", p.X, p.Y, cn.Label)
		} else {
			printDetail("(%.0f, %.0f) no candidate", p.X, p.Y)
		}
	}

	pending := s.End()
	loggerFromContext(ctx).Debug("drag ended", "outcome", s.Outcome())
	if pending == nil {
		printWarning("Dropped without a target, graph unchanged")
		return nil
	}
	target, _ := f.Node(pending.Target)
	if !pending.Possible() {
		printError("%s", pending.Reason)
		return nil
	}
	printSuccess("Drop %q onto %q: %v", label, target.Label, pending.Allowed)
	printNextStep("Apply", fmt.Sprintf("intentgraph move %s %d %d --op %s", input, pending.Source, pending.Target, pending.Allowed[0]))
	return nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (forest.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return forest.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return forest.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be two numbers", s)
	}
	return forest.Point{X: x, Y: y}, nil
}
