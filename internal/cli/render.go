package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderCommand exports a tree as a node-link diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output      string
		format      string
		orientation string
		detailed    bool
		confirmed   []string
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render an intent tree as a node-link diagram",
		Long: `Render an intent tree as a node-link diagram.

Nodes are grouped into one cluster per tier. Confirmed nodes get a bold
border; an edge is solid only when both its endpoints are confirmed.
DOT output needs no Graphviz installation; SVG uses the embedded renderer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(output)
			}
			return c.runRender(cmd.Context(), args[0], output, format, orientation, detailed, confirmed)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: svg (default), dot")
	cmd.Flags().StringVar(&orientation, "orientation", "stacked", "stacked or columnar")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node types and record comments")
	cmd.Flags().StringSliceVar(&confirmed, "confirmed", nil, "labels confirmed in a previous build")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, output, format, orientation string, detailed bool, confirmed []string) error {
	if format != formatDOT && format != formatSVG {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatSVG, formatDOT)
	}
	o, err := layout.ParseOrientation(orientation)
	if err != nil {
		return err
	}
	f, err := c.readForest(input, confirmed)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}

	prog := newProgress(loggerFromContext(ctx))
	data := []byte(nodelink.ToDOT(f, nodelink.Options{Orientation: o, Detailed: detailed}))
	if format == formatSVG {
		if data, err = nodelink.RenderSVG(string(data)); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d nodes as %s", f.NodeCount(), format))

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if output == "-" {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Rendered %s", strings.ToUpper(format))
	printFile(output)
	return nil
}

// formatFromPath infers the format from an output file extension.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".dot") || strings.EqualFold(filepath.Ext(path), ".gv") {
		return formatDOT
	}
	return formatSVG
}
